package tutor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestConfig(t *testing.T) {
	spanish := Language{Code: "es", Name: "Spanish"}
	hotel := Mission{ID: "hotel", Title: "Checking into a Hotel"}

	tests := []struct {
		name    string
		lang    Language
		mode    Mode
		mission *Mission
		wantErr error
	}{
		{"immersion", spanish, ModeImmersion, nil, nil},
		{"crosstalk", spanish, ModeCrosstalk, nil, nil},
		{"missions with mission", spanish, ModeMissions, &hotel, nil},
		{"missions without mission", spanish, ModeMissions, nil, ErrMissionRequired},
		{"mission outside missions mode", spanish, ModeImmersion, &hotel, ErrMissionNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewRequestConfig(tt.lang, tt.mode, tt.mission)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mode, cfg.Mode)
		})
	}
}

func TestNewRequestConfig_RejectsMissingLanguageAndBadMode(t *testing.T) {
	_, err := NewRequestConfig(Language{}, ModeImmersion, nil)
	assert.Error(t, err)

	_, err = NewRequestConfig(Language{Code: "fr", Name: "French"}, Mode("CHAOS"), nil)
	assert.Error(t, err)
}

func TestRequestConfig_CopiesMission(t *testing.T) {
	m := Mission{ID: "grocery"}
	cfg, err := NewRequestConfig(Language{Code: "de", Name: "German"}, ModeMissions, &m)
	require.NoError(t, err)

	m.ID = "changed"
	assert.Equal(t, "grocery", cfg.Mission.ID)
}

func TestRequestConfig_Key(t *testing.T) {
	de := Language{Code: "de", Name: "German"}
	a, _ := NewRequestConfig(de, ModeImmersion, nil)
	b, _ := NewRequestConfig(de, ModeCrosstalk, nil)
	c, _ := NewRequestConfig(de, ModeMissions, &Mission{ID: "hotel"})
	d, _ := NewRequestConfig(de, ModeMissions, &Mission{ID: "grocery"})

	keys := map[string]bool{a.Key(): true, b.Key(): true, c.Key(): true, d.Key(): true}
	assert.Len(t, keys, 4)
	assert.Equal(t, "de/MISSIONS/hotel", c.Key())
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"immersion": ModeImmersion,
		"CROSSTALK": ModeCrosstalk,
		"Missions":  ModeMissions,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseMode("karaoke")
	assert.Error(t, err)
}

func TestMessage_WireFormat(t *testing.T) {
	msgs := []Message{
		{ID: 7, Role: RoleModel, Text: "¡Hola!"},
		{ID: 8, Role: RoleUser, Text: "Yo es Ana", Correction: &Correction{
			Original: "Yo es Ana", Corrected: "Yo soy Ana", Explanation: "ser",
		}},
	}
	raw, err := json.Marshal(msgs)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"role":"model","text":"¡Hola!","correction":null},
		{"role":"user","text":"Yo es Ana","correction":{"original":"Yo es Ana","corrected":"Yo soy Ana","explanation":"ser"}}
	]`, string(raw))
}

func TestCatalogs(t *testing.T) {
	langs := Languages()
	require.Len(t, langs, 9)
	assert.Equal(t, Language{Code: "es", Name: "Spanish"}, langs[0])
	assert.Equal(t, "el", langs[len(langs)-1].Code)

	zh, err := LookupLanguage("zh-CN")
	require.NoError(t, err)
	assert.Equal(t, "Mandarin Chinese", zh.Name)
	_, err = LookupLanguage("xx")
	assert.Error(t, err)

	missions := Missions()
	require.Len(t, missions, 4)
	assert.Equal(t, "restaurant", missions[0].ID)

	train, err := LookupMission("train_ticket")
	require.NoError(t, err)
	assert.Equal(t, "Buying a Train Ticket", train.Title)

	// Callers get copies.
	langs[0].Name = "Klingon"
	assert.Equal(t, "Spanish", Languages()[0].Name)
}
