package validator

import (
	"strings"
	"testing"

	"github.com/futig/launchpad-backend/internal/config"
	"github.com/futig/launchpad-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *Validator {
	return New(config.ValidationConfig{
		MaxNameLength:        10,
		MaxDescriptionLength: 20,
		MaxMessageLength:     30,
	})
}

func TestValidateCreateProject(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		req     entity.CreateProjectRequest
		wantErr error
	}{
		{name: "valid", req: entity.CreateProjectRequest{Name: " Walkies ", CallbackURL: "https://hooks.example.com/x"}},
		{name: "missing name", req: entity.CreateProjectRequest{Name: "   "}, wantErr: entity.ErrMissingField},
		{name: "long name", req: entity.CreateProjectRequest{Name: strings.Repeat("a", 11)}, wantErr: entity.ErrInvalidParameter},
		{name: "long description", req: entity.CreateProjectRequest{Name: "ok", Description: strings.Repeat("d", 21)}, wantErr: entity.ErrInvalidParameter},
		{name: "relative callback", req: entity.CreateProjectRequest{Name: "ok", CallbackURL: "/hooks"}, wantErr: entity.ErrInvalidFormat},
		{name: "ftp callback", req: entity.CreateProjectRequest{Name: "ok", CallbackURL: "ftp://example.com"}, wantErr: entity.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreateProject(&tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateCreateProject_Trims(t *testing.T) {
	req := &entity.CreateProjectRequest{Name: "  Walkies  ", Description: " dogs "}
	require.NoError(t, newTestValidator().ValidateCreateProject(req))
	assert.Equal(t, "Walkies", req.Name)
	assert.Equal(t, "dogs", req.Description)
}

func TestValidateCredentials(t *testing.T) {
	v := newTestValidator()

	assert.ErrorIs(t, v.ValidateCredentials(&entity.SetCredentialsRequest{}), entity.ErrMissingField)
	assert.ErrorIs(t, v.ValidateCredentials(&entity.SetCredentialsRequest{OpenAI: "sk bad"}), entity.ErrInvalidFormat)

	req := &entity.SetCredentialsRequest{Anthropic: " sk-ant-1 "}
	require.NoError(t, v.ValidateCredentials(req))
	assert.Equal(t, "sk-ant-1", req.Anthropic)
}

func TestValidateMessage(t *testing.T) {
	v := newTestValidator()

	text, err := v.ValidateMessage("  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	_, err = v.ValidateMessage(" \n ")
	assert.ErrorIs(t, err, entity.ErrEmptyUtterance)

	_, err = v.ValidateMessage(strings.Repeat("x", 31))
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
