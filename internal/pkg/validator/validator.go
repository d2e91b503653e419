package validator

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/entity"
)

// Validator checks user supplied request payloads
type Validator struct {
	cfg config.ValidationConfig
}

func New(cfg config.ValidationConfig) *Validator {
	return &Validator{cfg: cfg}
}

func (v *Validator) ValidateCreateProject(req *entity.CreateProjectRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.CallbackURL = strings.TrimSpace(req.CallbackURL)

	if req.Name == "" {
		return fmt.Errorf("%w: name", entity.ErrMissingField)
	}
	if n := utf8.RuneCountInString(req.Name); n > v.cfg.MaxNameLength {
		return fmt.Errorf("%w: name is %d characters (max %d)", entity.ErrInvalidParameter, n, v.cfg.MaxNameLength)
	}
	if n := utf8.RuneCountInString(req.Description); n > v.cfg.MaxDescriptionLength {
		return fmt.Errorf("%w: description is %d characters (max %d)", entity.ErrInvalidParameter, n, v.cfg.MaxDescriptionLength)
	}
	if req.CallbackURL != "" {
		if err := ValidateCallbackURL(req.CallbackURL); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCallbackURL accepts absolute http(s) URLs only
func ValidateCallbackURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: callback_url: %v", entity.ErrInvalidFormat, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: callback_url must be an absolute http(s) URL", entity.ErrInvalidFormat)
	}
	return nil
}

func (v *Validator) ValidateCredentials(req *entity.SetCredentialsRequest) error {
	req.OpenAI = strings.TrimSpace(req.OpenAI)
	req.Anthropic = strings.TrimSpace(req.Anthropic)
	req.Google = strings.TrimSpace(req.Google)

	if req.OpenAI == "" && req.Anthropic == "" && req.Google == "" {
		return fmt.Errorf("%w: at least one provider key", entity.ErrMissingField)
	}
	for name, key := range map[string]string{"openai": req.OpenAI, "anthropic": req.Anthropic, "google": req.Google} {
		if strings.ContainsAny(key, " \t\r\n") {
			return fmt.Errorf("%w: %s key contains whitespace", entity.ErrInvalidFormat, name)
		}
	}
	return nil
}

// ValidateMessage returns the trimmed message text
func (v *Validator) ValidateMessage(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", entity.ErrEmptyUtterance
	}
	if n := utf8.RuneCountInString(text); n > v.cfg.MaxMessageLength {
		return "", fmt.Errorf("%w: message is %d characters (max %d)", entity.ErrInvalidParameter, n, v.cfg.MaxMessageLength)
	}
	return text, nil
}
