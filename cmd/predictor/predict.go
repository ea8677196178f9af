package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/chase-predictor/internal/features"
	"github.com/yourusername/chase-predictor/internal/interpret"
	"github.com/yourusername/chase-predictor/internal/match"
	"github.com/yourusername/chase-predictor/internal/model"
	"github.com/yourusername/chase-predictor/internal/prediction"
)

var (
	stateFlags  match.MatchState
	battingTeam string
	bowlingTeam string
	venue       string
	jsonOutput  bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score one chase",
	Example: `  predictor predict --batting "Mumbai Indians" --bowling "Chennai Super Kings" \
    --venue "Wankhede Stadium" --target 180 --score 85 --wickets 4 --overs 10`,
	RunE: runPredict,
}

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print the projected score and required rate for each over",
	RunE:  runTimeline,
}

var checkModelCmd = &cobra.Command{
	Use:   "check-model",
	Short: "Load the configured model and report its schema",
	RunE:  runCheckModel,
}

func init() {
	addStateFlags(predictCmd)
	addStateFlags(timelineCmd)

	predictCmd.Flags().StringVar(&battingTeam, "batting", "", "Batting (chasing) team")
	predictCmd.Flags().StringVar(&bowlingTeam, "bowling", "", "Bowling (defending) team")
	predictCmd.Flags().StringVar(&venue, "venue", "", "Venue")
	predictCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full outcome as JSON")

	timelineCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the projection as JSON")
}

func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&stateFlags.Target, "target", 0, "Target score")
	cmd.Flags().IntVar(&stateFlags.CurrentScore, "score", 0, "Current score")
	cmd.Flags().IntVar(&stateFlags.Wickets, "wickets", 0, "Wickets lost")
	cmd.Flags().Float64Var(&stateFlags.OversCompleted, "overs", 0, "Overs completed, e.g. 10.3")
	cmd.Flags().BoolVar(&stateFlags.TopBatsmanPlaying, "top-batsman", false, "A top-order batsman is at the crease")
	cmd.Flags().IntVar(&stateFlags.RecentPartnership, "partnership", 0, "Runs in the current partnership")
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, appLog, err := loadConfig()
	if err != nil {
		return err
	}

	req := prediction.Request{
		BattingTeam: battingTeam,
		BowlingTeam: bowlingTeam,
		Venue:       venue,
		MatchState:  stateFlags,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	handle := model.NewHandle(modelLoader(cfg, appLog), appLog)
	if _, err := handle.Get(cmd.Context()); err != nil {
		return err
	}

	out, err := prediction.NewService(handle, nil, appLog).Predict(cmd.Context(), req)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(out)
	}
	printOutcome(req, out)
	return nil
}

func printOutcome(req prediction.Request, out *prediction.Outcome) {
	res := out.Result
	m := out.Metrics

	fmt.Printf("\n%s\n", res.Headline)
	fmt.Printf("  %s win: %5.1f%%   %s win: %5.1f%%   band: %s\n",
		req.BattingTeam, res.WinProbability*100, req.BowlingTeam, res.LossProbability*100, res.Band)
	if res.Extreme {
		fmt.Println("  (high-confidence prediction)")
	}

	fmt.Printf("\n  Need %d off %s overs  CRR %.2f  RRR %.2f  wickets in hand %d\n",
		m.RunsLeft, m.OversLeft(), m.CRR, m.RRR, m.WicketsInHand)

	fmt.Println("\nKey insights:")
	for _, f := range res.Facts {
		fmt.Printf("  - %s\n", f.Text)
	}

	fmt.Println("\nImpact factors:")
	for _, f := range out.ImpactFactors {
		fmt.Printf("  - %s\n", f.Text)
	}
	fmt.Printf("\nModel %s (%s, schema %s)\n\n", out.Model.ModelVersion, out.Model.Source, out.Model.SchemaVersion)
}

func runTimeline(cmd *cobra.Command, args []string) error {
	if err := stateFlags.Validate(); err != nil {
		return err
	}

	tl := prediction.BuildTimeline(match.Compute(stateFlags))
	if jsonOutput {
		return printJSON(tl)
	}

	fmt.Printf("%4s  %15s  %13s\n", "Over", "Projected score", "Required rate")
	for _, p := range tl.Points {
		fmt.Printf("%4d  %15.1f  %13.2f\n", p.Over, p.ProjectedScore, p.RequiredRate)
	}
	fmt.Printf("\n%s: over %.1f, score %d\n", tl.Marker.Label, tl.Marker.Over, tl.Marker.Score)
	return nil
}

func runCheckModel(cmd *cobra.Command, args []string) error {
	cfg, appLog, err := loadConfig()
	if err != nil {
		return err
	}

	handle := model.NewHandle(modelLoader(cfg, appLog), appLog)
	scorer, err := handle.Get(cmd.Context())
	if err != nil {
		return err
	}

	info := scorer.Info()
	fmt.Printf("Source:         %s\n", info.Source)
	fmt.Printf("Model version:  %s\n", info.ModelVersion)
	fmt.Printf("Schema version: %s\n", info.SchemaVersion)
	fmt.Println("Columns:")
	for i, c := range info.Columns {
		fmt.Printf("  %2d  %s\n", i+1, c)
	}

	// A sample row proves the model scores end to end
	sample := match.Compute(match.MatchState{Target: 160, CurrentScore: 80, Wickets: 3, OversCompleted: 10})
	fv, err := features.Build("Mumbai Indians", "Chennai Super Kings", "Wankhede Stadium", sample)
	if err != nil {
		return err
	}
	p, err := scorer.PredictProba(cmd.Context(), fv)
	if err != nil {
		return fmt.Errorf("sample prediction failed: %w", err)
	}
	fmt.Printf("Sample:         %.4f (%s)\n", p, interpret.BandFor(p))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
