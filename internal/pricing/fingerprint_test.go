package pricing

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/arb-scanner/internal/models"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

func sampleOpportunity(t *testing.T) models.ArbOpportunity {
	t.Helper()
	opps, err := newTestScanner(t, DefaultOptions().WithMinEdge(0)).Scan(dukeUNCRecords())
	require.NoError(t, err)
	require.Len(t, opps, 1)
	return opps[0]
}

func TestFingerprintFormat(t *testing.T) {
	fp := Fingerprint(sampleOpportunity(t))
	assert.Len(t, fp, FingerprintLength)
	assert.Regexp(t, hexPattern, fp)
}

func TestFingerprintInvariantToLegOrder(t *testing.T) {
	opp := sampleOpportunity(t)
	swapped := opp
	swapped.LegA, swapped.LegB = opp.LegB, opp.LegA

	assert.Equal(t, Fingerprint(opp), Fingerprint(swapped))
}

func TestFingerprintIgnoresCaptureTime(t *testing.T) {
	opp := sampleOpportunity(t)
	later := opp
	later.CapturedAt = opp.CapturedAt.Add(5 * time.Minute)

	assert.Equal(t, Fingerprint(opp), Fingerprint(later))
}

func TestFingerprintChangesWithContent(t *testing.T) {
	base := sampleOpportunity(t)
	baseFP := Fingerprint(base)

	tests := []struct {
		name   string
		mutate func(o *models.ArbOpportunity)
	}{
		{"bookmaker", func(o *models.ArbOpportunity) { o.LegA.Bookmaker = "book_z" }},
		{"odds", func(o *models.ArbOpportunity) { o.LegB.OddsAmerican = 115 }},
		{"outcome", func(o *models.ArbOpportunity) { o.LegA.Outcome = "Duke Blue Devils" }},
		{"game", func(o *models.ArbOpportunity) { o.GameID = "g2" }},
		{"market", func(o *models.ArbOpportunity) { o.Market = models.MarketTotals }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := base
			tt.mutate(&changed)
			assert.NotEqual(t, baseFP, Fingerprint(changed))
		})
	}
}

func TestFingerprintIncludesLine(t *testing.T) {
	opps, err := newTestScanner(t, DefaultOptions().WithMinEdge(0)).Scan(spreadRecords())
	require.NoError(t, err)
	require.Len(t, opps, 1)
	opp := opps[0]

	moved := opp
	moved.LegA.Line = floatPtr(-4.5)
	moved.LegB.Line = floatPtr(4.5)

	assert.NotEqual(t, Fingerprint(opp), Fingerprint(moved))
}

func TestFingerprintSameArbAcrossSnapshots(t *testing.T) {
	first := sampleOpportunity(t)

	next := dukeUNCRecords()
	for i := range next {
		next[i].CapturedAt = snapshotTime.Add(10 * time.Minute)
	}
	opps, err := newTestScanner(t, DefaultOptions().WithMinEdge(0)).Scan(next)
	require.NoError(t, err)
	require.Len(t, opps, 1)

	assert.Equal(t, Fingerprint(first), Fingerprint(opps[0]))
}
