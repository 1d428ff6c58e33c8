// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package i18n_test

import (
	"context"
	"testing"

	"github.com/esalama/gatecheck/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestInit(t *testing.T) {
	err := i18n.Init()
	require.NoError(t, err)
}

func TestTData_Arrival(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	msg := i18n.TData(ctx, "notification_arrival", map[string]any{
		"Name": "Amina Hassan",
		"Time": "07:45",
	})
	assert.Contains(t, msg, "Amina Hassan")
	assert.Contains(t, msg, "07:45")
	assert.Contains(t, msg, "entered")
}

func TestTData_Swahili(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.Swahili)

	msg := i18n.TData(ctx, "notification_departure", map[string]any{
		"Name": "Amina Hassan",
		"Time": "15:30",
	})
	assert.Contains(t, msg, "Amina Hassan")
	assert.Contains(t, msg, "ameondoka")
}

func TestT_UnknownKey(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	result := i18n.T(ctx, "unknown_key_that_does_not_exist")
	assert.Equal(t, "unknown_key_that_does_not_exist", result)
}

func TestT_NoLocaleContext(t *testing.T) {
	require.NoError(t, i18n.Init())

	msg := i18n.TData(context.Background(), "notification_generic", map[string]any{"Name": "Amina"})
	assert.Contains(t, msg, "Amina")
}

func TestMatchLanguage(t *testing.T) {
	assert.Equal(t, language.Swahili, i18n.MatchLanguage("sw"))
	assert.Equal(t, language.English, i18n.MatchLanguage("en-US"))
	assert.Equal(t, language.English, i18n.MatchLanguage("fr"))
}
