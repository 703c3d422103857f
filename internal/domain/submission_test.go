package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwill99/temporal-hr/internal/domain"
)

func validSubmission() domain.ApplicationSubmission {
	return domain.ApplicationSubmission{
		Email:       "a@x.com",
		Title:       "Senior Full-Stack",
		Description: "5 years, React, Node.js, senior",
		Source:      domain.SourceWeb,
	}
}

// TestApplicationSubmissionValidate covers the required-field and format
// rules applied before a submission enters the pipeline.
func TestApplicationSubmissionValidate(t *testing.T) {
	t.Run("valid submission passes", func(t *testing.T) {
		sub := validSubmission()
		require.NoError(t, sub.Validate())
	})

	t.Run("file path is optional", func(t *testing.T) {
		sub := validSubmission()
		sub.FilePath = ""
		require.NoError(t, sub.Validate())
	})

	t.Run("missing email is a missing field error", func(t *testing.T) {
		sub := validSubmission()
		sub.Email = "   "

		err := sub.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingField)

		var mfe *domain.MissingFieldError
		require.ErrorAs(t, err, &mfe)
		assert.Equal(t, "email", mfe.Field)
	})

	t.Run("missing title is a missing field error", func(t *testing.T) {
		sub := validSubmission()
		sub.Title = ""

		var mfe *domain.MissingFieldError
		require.ErrorAs(t, sub.Validate(), &mfe)
		assert.Equal(t, "title", mfe.Field)
	})

	t.Run("whitespace-only description is missing once normalized", func(t *testing.T) {
		sub := validSubmission()
		sub.Description = " \n\t "
		sub = sub.Normalized()

		var mfe *domain.MissingFieldError
		require.ErrorAs(t, sub.Validate(), &mfe)
		assert.Equal(t, "description", mfe.Field)
	})

	t.Run("malformed email is invalid but not missing", func(t *testing.T) {
		sub := validSubmission()
		sub.Email = "not-an-address"

		err := sub.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidSubmission)
		assert.NotErrorIs(t, err, domain.ErrMissingField)
	})
}

func TestApplicationSubmissionNormalized(t *testing.T) {
	sub := domain.ApplicationSubmission{
		Email:       "  a@x.com ",
		Title:       " Engineer ",
		Description: "\n5 years of React\t ",
	}

	got := sub.Normalized()
	assert.Equal(t, "5 years of React", got.Description)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "Engineer", got.Title)
	assert.Equal(t, domain.SourceWeb, got.Source)
	assert.Equal(t, "  a@x.com ", sub.Email, "original must not be modified")
}
