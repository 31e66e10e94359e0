package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision(t *testing.T) {
	t.Run("plain JSON object", func(t *testing.T) {
		dec, err := ParseDecision(`{"action":"buy","percentage":50,"rationale":"momentum is positive"}`)
		require.NoError(t, err)
		assert.Equal(t, ActionBuy, dec.Action)
		assert.Equal(t, 50, dec.Percentage)
		assert.Equal(t, "momentum is positive", dec.Rationale)
	})

	t.Run("fenced JSON is accepted", func(t *testing.T) {
		raw := "```json\n{\"action\":\"sell\",\"percentage\":30,\"rationale\":\"take profit\"}\n```"
		dec, err := ParseDecision(raw)
		require.NoError(t, err)
		assert.Equal(t, ActionSell, dec.Action)
		assert.Equal(t, 30, dec.Percentage)
	})

	t.Run("prose around the object is tolerated", func(t *testing.T) {
		raw := `Here is my analysis. {"action":"hold","percentage":0,"rationale":"no edge"} Hope that helps.`
		dec, err := ParseDecision(raw)
		require.NoError(t, err)
		assert.Equal(t, ActionHold, dec.Action)
		assert.Equal(t, 0, dec.Percentage)
	})

	t.Run("braces inside rationale string", func(t *testing.T) {
		dec, err := ParseDecision(`{"action":"buy","percentage":10,"rationale":"range is {tight}"}`)
		require.NoError(t, err)
		assert.Equal(t, "range is {tight}", dec.Rationale)
	})

	t.Run("boundary percentages accepted", func(t *testing.T) {
		for _, pct := range []string{"0", "100"} {
			_, err := ParseDecision(`{"action":"buy","percentage":` + pct + `,"rationale":"x"}`)
			assert.NoError(t, err, "percentage %s", pct)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		cases := map[string]string{
			"no JSON at all":         `I would buy 50 percent here.`,
			"unknown action":         `{"action":"short","percentage":50,"rationale":"x"}`,
			"missing action":         `{"percentage":50,"rationale":"x"}`,
			"missing percentage":     `{"action":"buy","rationale":"x"}`,
			"percentage above range": `{"action":"buy","percentage":101,"rationale":"x"}`,
			"percentage below range": `{"action":"sell","percentage":-1,"rationale":"x"}`,
			"fractional percentage":  `{"action":"buy","percentage":2.5,"rationale":"x"}`,
			"string percentage":      `{"action":"buy","percentage":"50","rationale":"x"}`,
			"unbalanced object":      `{"action":"buy","percentage":50,"rationale":"x"`,
		}
		for name, raw := range cases {
			t.Run(name, func(t *testing.T) {
				dec, err := ParseDecision(raw)
				assert.Error(t, err)
				assert.Nil(t, dec)
			})
		}
	})

	t.Run("missing percentage never defaults", func(t *testing.T) {
		_, err := ParseDecision(`{"action":"buy","rationale":"x"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "percentage")
	})
}

func TestActionZeroValueIsHold(t *testing.T) {
	var action Action
	assert.Equal(t, ActionHold, action)
	assert.Equal(t, "hold", action.String())

	var decision Decision
	assert.Equal(t, ActionHold, decision.Action)
}

func TestActionJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, a := range []Action{ActionBuy, ActionSell, ActionHold} {
			data, err := a.MarshalJSON()
			require.NoError(t, err)

			var parsed Action
			require.NoError(t, parsed.UnmarshalJSON(data))
			assert.Equal(t, a, parsed)
		}
	})

	t.Run("unknown value rejected", func(t *testing.T) {
		var parsed Action
		assert.Error(t, parsed.UnmarshalJSON([]byte(`"short"`)))
	})
}
