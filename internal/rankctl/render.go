package rankctl

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	service "github.com/okian/talentmatch/internal/app"
	"github.com/okian/talentmatch/internal/domain/types"
)

// Report is the JSON document printed by `rankctl rank --json`.
type Report struct {
	RunID   string               `json:"run_id"`
	Brief   service.Request      `json:"brief"`
	Count   int                  `json:"count"`
	Results []types.RankedTalent `json:"results"`
}

func writeJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func writeTable(w io.Writer, rep Report) error {
	if _, err := fmt.Fprintf(w, "run %s  segment=%s industry=%s budget_band=%q  %d result(s)\n",
		rep.RunID, rep.Brief.Segment, rep.Brief.Industry, rep.Brief.BudgetBand, rep.Count); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tSCORE\tBASE\tADJ\tREC\tCM")
	for _, r := range rep.Results {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%.1f\t%.2f\t%+.0f\t%s\t%s\n",
			r.Rank, r.TalentID, r.Name, r.MatchingScore, r.BasePowerScore, r.ImageAdjustment,
			mark(r.IsRecommended), mark(r.IsCurrentlyInCompetingCm))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

func mark(b bool) string {
	if b {
		return "*"
	}
	return ""
}
