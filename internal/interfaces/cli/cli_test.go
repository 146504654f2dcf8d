package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
)

func TestFormatTable_AlignsColumns(t *testing.T) {
	out := formatTable(
		[]string{"CODE", "K12 IMPACT"},
		[][]string{
			{"211 PC", "mandatory-disqualifier"},
			{"484 PC", "non-disqualifying"},
		},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "CODE    "))
	assert.Contains(t, lines[1], "----")
	assert.True(t, strings.HasPrefix(lines[2], "211 PC  "))
}

func TestLoadAnalysis_RoundTrip(t *testing.T) {
	analysis := offense.ComprehensiveAnalysis{
		ID: "run-1",
		Codes: []offense.OffenseRecord{
			{Code: "211 PC", K12Impact: offense.StatusMandatoryDisqualifier},
		},
	}
	raw, err := json.Marshal(analysis)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "analysis.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	loaded, err := loadAnalysis(path)
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.ID)
	assert.Len(t, loaded.Codes, 1)
}

func TestLoadAnalysis_EmptyCodesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"x","codes":[]}`), 0o644))

	_, err := loadAnalysis(path)
	assert.Error(t, err)
}

type scriptedAsker struct {
	replies []string
	asked   []string
	history [][]offense.ChatMessage
}

func (s *scriptedAsker) Ask(_ context.Context, _ *offense.ComprehensiveAnalysis, history []offense.ChatMessage, userMessage string) (string, error) {
	s.asked = append(s.asked, userMessage)
	s.history = append(s.history, append([]offense.ChatMessage{}, history...))
	reply := s.replies[len(s.asked)-1]
	return reply, nil
}

func TestRunChatLoop_AccumulatesHistoryUntilExit(t *testing.T) {
	svc := &scriptedAsker{replies: []string{"first reply", "second reply"}}

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetIn(strings.NewReader("why disqualified?\nany exemptions?\nexit\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := runChatLoop(cmd, svc, &offense.ComprehensiveAnalysis{
		ID:      "run-1",
		Codes:   []offense.OffenseRecord{{Code: "211 PC"}},
		Summary: offense.AnalysisSummary{TotalCodes: 1, OverallStatus: offense.StatusMandatoryDisqualifier},
	})

	require.NoError(t, err)
	require.Len(t, svc.asked, 2)
	assert.Empty(t, svc.history[0])
	// Second turn carries the first question and its reply.
	require.Len(t, svc.history[1], 2)
	assert.Equal(t, offense.RoleUser, svc.history[1][0].Role)
	assert.Equal(t, "first reply", svc.history[1][1].Content)
	assert.Contains(t, out.String(), "second reply")
}
