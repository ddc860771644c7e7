package extract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crux-labs/pricewatch/internal/model"
)

func TestExtract_StructuredDataOnly(t *testing.T) {
	html := `<html><head><script type="application/ld+json">{"price": 22}</script></head><body></body></html>`

	price := New(DefaultConfig()).Extract(html)
	require.NotNil(t, price)
	assert.Equal(t, 22.0, price.Amount)
	assert.Equal(t, model.ConfidenceHigh, price.Confidence)
	assert.Equal(t, "structured-data", price.Source)
	assert.Equal(t, "CAD", price.Currency)
}

func TestExtract_AdultBeatsStudentTier(t *testing.T) {
	html := `<html><body>
		<p>Adult Day Pass: $25</p>
		<p>Student Day Pass: $15</p>
	</body></html>`

	price := New(DefaultConfig()).Extract(html)
	require.NotNil(t, price)
	assert.Equal(t, 25.0, price.Amount)
}

func TestExtract_BotChallengePage(t *testing.T) {
	html := `<html><body>Please complete the CAPTCHA to continue</body></html>`
	assert.Nil(t, New(DefaultConfig()).Extract(html))
}

func TestExtract_EmptyDocument(t *testing.T) {
	assert.Nil(t, New(DefaultConfig()).Extract(""))
}

func TestExtract_NoAdmissiblePrices(t *testing.T) {
	// Everything outside the 15-50 window must be discarded by every
	// strategy.
	html := `<html><body>
		<script type="application/ld+json">{"price": 120}</script>
		<p>Day pass: $9</p>
		<table><tr><td>Adult drop-in</td><td>$250</td></tr></table>
		<span class="price">$14.99</span>
		<p>Membership $99 $99 $99</p>
	</body></html>`

	assert.Nil(t, New(DefaultConfig()).Extract(html))
}

func TestExtract_BoundaryAmountsAdmissible(t *testing.T) {
	for _, amount := range []float64{15, 50} {
		html := fmt.Sprintf(`<html><body><p>Day pass: $%.0f</p></body></html>`, amount)
		price := New(DefaultConfig()).Extract(html)
		require.NotNil(t, price, "amount %v should be admissible", amount)
		assert.Equal(t, amount, price.Amount)
	}
}

func TestExtract_CustomRange(t *testing.T) {
	e := New(Config{MinPrice: 100, MaxPrice: 200, Currency: "USD"})
	price := e.Extract(`<html><body><p>Day pass: $150</p></body></html>`)
	require.NotNil(t, price)
	assert.Equal(t, 150.0, price.Amount)
	assert.Equal(t, "USD", price.Currency)

	assert.Nil(t, e.Extract(`<html><body><p>Day pass: $25</p></body></html>`))
}

func TestExtract_StructuredDataIgnoresExclusionContext(t *testing.T) {
	// Exclusion keywords elsewhere on the page never trip the structured
	// data strategy below its base score.
	html := `<html><body>
		<p>youth student senior child under kids</p>
		<script type="application/ld+json">{"offers": {"price": "$30"}}</script>
	</body></html>`

	price := New(DefaultConfig()).Extract(html)
	require.NotNil(t, price)
	assert.Equal(t, 30.0, price.Amount)
	assert.Equal(t, "structured-data", price.Source)
	assert.Equal(t, model.ConfidenceHigh, price.Confidence)
}

func TestExtract_FrequencyFallbackIsLowConfidence(t *testing.T) {
	// No keywords, no markup hints: only the frequency fallback fires, and
	// its cap keeps it below medium regardless of repetition.
	html := `<html><body>$35 $35 $35 $35 $35 $35 $35 $35 $35 $35</body></html>`

	price := New(DefaultConfig()).Extract(html)
	require.NotNil(t, price)
	assert.Equal(t, 35.0, price.Amount)
	assert.Equal(t, "heuristic", price.Source)
	assert.Equal(t, model.ConfidenceLow, price.Confidence)
}

func TestExtract_Deterministic(t *testing.T) {
	html := `<html><body>
		<script type="application/ld+json">{"a": 20, "b": 25, "c": "30 dollars"}</script>
		<p>Day pass $25</p><p>Drop-in $20</p>
		<span class="price">$30</span>
	</body></html>`

	e := New(DefaultConfig())
	first := e.Extract(html)
	require.NotNil(t, first)
	for i := 0; i < 10; i++ {
		next := e.Extract(html)
		require.NotNil(t, next)
		assert.Equal(t, *first, *next)
	}
}

func TestConfidenceFor_Bands(t *testing.T) {
	cases := []struct {
		score int
		want  model.Confidence
	}{
		{100, model.ConfidenceHigh},
		{90, model.ConfidenceHigh},
		{80, model.ConfidenceHigh},
		{79, model.ConfidenceMedium},
		{50, model.ConfidenceMedium},
		{49, model.ConfidenceLow},
		{0, model.ConfidenceLow},
		{-20, model.ConfidenceLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, confidenceFor(tc.score), "score %d", tc.score)
	}
}

func TestPricesFromText(t *testing.T) {
	prices := pricesFromText("Adult $25, child $ 15.50, member $12.00, broken $1.5")
	assert.Equal(t, []float64{25, 15.50, 12, 1}, prices)
}

func TestPricesFromText_NoMatches(t *testing.T) {
	assert.Empty(t, pricesFromText("25 dollars, twenty-five, CAD 25"))
}
