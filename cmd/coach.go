package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dealcoach/pkg/config"
	"dealcoach/pkg/flow"
	"dealcoach/pkg/guidance"
	"dealcoach/pkg/llm"
	"dealcoach/pkg/money"
	"dealcoach/pkg/utils"
)

var (
	coachTarget int64
	coachWalk   int64
	coachAsk    int64
	coachPrice  int64
	coachState  string
	coachLock   bool
	coachNoAI   bool
)

// coachCmd is the interactive session you keep open at the dealership.
var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Interactive negotiation session at the dealership",
	Long: `Runs the five-step negotiation loop in your terminal:

  1. Set your numbers (target, walk-away, opening ask)
  2. Get the dealer's itemized out-the-door quote
  3. Type what the dealer says; get the tactic read and a script
  4. Ask for the counter/close/walk call
  5. Feed in the dealer's new number and repeat

Type 'help' inside the session for the command list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("coach is interactive; run it from a terminal (or use 'dealcoach serve')")
		}
		return runCoach()
	},
}

func init() {
	coachCmd.Flags().Int64Var(&coachTarget, "target", 0, "target OTD in whole dollars")
	coachCmd.Flags().Int64Var(&coachWalk, "walk", 0, "walk-away OTD in whole dollars")
	coachCmd.Flags().Int64Var(&coachAsk, "ask", 0, "opening ask OTD (default: target minus $1,000)")
	coachCmd.Flags().Int64Var(&coachPrice, "price", 0, "vehicle price, used to estimate a target when none is set")
	coachCmd.Flags().StringVar(&coachState, "state", "", "two-letter state code for tax estimates")
	coachCmd.Flags().BoolVar(&coachLock, "lock", false, "lock the ladder: guidance will never quote a figure above walk-away")
	coachCmd.Flags().BoolVar(&coachNoAI, "no-ai", false, "skip the model and use deterministic guidance only")
}

func runCoach() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := utils.GetLogger()
	table, err := loadTaxTable(cfg)
	if err != nil {
		return err
	}

	aiEnabled := cfg.AIEnabled && !coachNoAI
	var chat guidance.ChatClient
	if aiEnabled {
		client, err := llm.NewClient(cfg.Model)
		if err != nil {
			fmt.Fprintf(os.Stderr, "model guidance unavailable (%v); using the playbook\n", err)
		} else {
			chat = client
		}
	}
	caps := flow.Capabilities{Entitled: true, Client: chat}

	sess := flow.NewSession(table, logger)
	stateCode := coachState
	if stateCode == "" {
		stateCode = cfg.DefaultState
	}
	warnings := sess.SetNumbers(flow.NumbersInput{
		VehiclePrice: money.Amount(coachPrice),
		TargetOTD:    money.Amount(coachTarget),
		WalkAwayOTD:  money.Amount(coachWalk),
		AskOTD:       money.Amount(coachAsk),
		StateCode:    stateCode,
		LockLadder:   coachLock,
		AIEnabled:    aiEnabled,
	})
	for _, w := range warnings {
		fmt.Printf("  ! %s\n", w)
	}
	printStatus(sess)

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()
	for {
		fmt.Printf("\n[%s] > ", sess.Step())
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmdWord, rest := splitCommand(line)
		switch cmdWord {
		case "quit", "exit":
			return nil
		case "help":
			printHelp()
		case "status":
			printStatus(sess)
		case "quote":
			coachQuote(sess, rest)
		case "update":
			coachUpdate(sess, rest)
		case "advise":
			coachAdvise(ctx, sess, caps)
		case "situation":
			coachTactic(ctx, sess, caps, rest, "", "")
		case "saw":
			coachTactic(ctx, sess, caps, "", "", rest)
		case "step":
			coachGoTo(sess, rest)
		case "reset":
			sess.Reset()
			fmt.Println("Session cleared. Set your numbers again with 'step 0' inputs or restart.")
		default:
			// Anything else is the dealer talking.
			coachTactic(ctx, sess, caps, "", line, "")
		}
	}
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	cmdWord := strings.ToLower(parts[0])
	rest := ""
	if len(parts) == 2 {
		rest = strings.TrimSpace(parts[1])
	}
	return cmdWord, rest
}

func printHelp() {
	fmt.Println(`Commands:
  <dealer's words>      classify the tactic and get a script
  situation <label>     pick the situation instead (e.g. 'situation pushing add-ons')
  saw <note>            describe what you saw on the worksheet
  quote <text|amount>   record the dealer's itemized OTD quote
  update <amount>       record the dealer's new number after your counter
  advise                get the counter / close / walk call
  status                show ladder, dealer OTD and confidence
  step <0-4>            jump to a flow step
  reset                 clear the session
  quit                  leave`)
}

func printStatus(sess *flow.Session) {
	st := sess.State()
	l := st.Ladder
	lock := ""
	if l.Locked {
		lock = " [locked]"
	}
	fmt.Printf("Ladder%s: ASK %s / AGREE %s / WALK %s\n",
		lock, money.Format(l.Ask), money.Format(l.Agree), money.Format(l.Walk))
	if st.DealerCurrentOTD != nil {
		fmt.Printf("Dealer OTD: %s", money.Format(*st.DealerCurrentOTD))
		if st.LastDealerOTD != nil {
			fmt.Printf(" (was %s)", money.Format(*st.LastDealerOTD))
		}
		fmt.Println()
	} else {
		fmt.Println("Dealer OTD: not captured yet")
	}
}

func coachQuote(sess *flow.Session, rest string) {
	if rest == "" {
		fmt.Println("Usage: quote <pasted dealer text or amount>")
		return
	}
	if amt, err := strconv.ParseInt(rest, 10, 64); err == nil {
		if err := sess.RecordDealerAmount(money.Amount(amt)); err != nil {
			fmt.Printf("  ! %v\n", err)
			return
		}
		fmt.Printf("Recorded dealer OTD %s.\n", money.Format(money.Amount(amt)))
		return
	}
	po, err := sess.RecordDealerQuote(rest)
	if err != nil {
		fmt.Printf("  ! %v\n", err)
		return
	}
	fmt.Printf("Recorded dealer OTD %s (confidence: %s, matched %q).\n",
		money.Format(po.Amount), po.Confidence, po.MatchedText)
}

func coachUpdate(sess *flow.Session, rest string) {
	amt, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		fmt.Println("Usage: update <amount>")
		return
	}
	trend, report, err := sess.UpdateOTD(money.Amount(amt))
	if err != nil {
		fmt.Printf("  ! %v\n", err)
		return
	}
	fmt.Printf("Trend: %s. %s\n", trend, report.Reason)
}

func coachTactic(ctx context.Context, sess *flow.Session, caps flow.Capabilities, situation, dealerText, narration string) {
	result, err := sess.HandleTactic(ctx, caps, situation, dealerText, narration)
	if err != nil {
		fmt.Printf("  ! %v\n", err)
		return
	}
	if len(result.Tags) > 0 {
		labels := make([]string, len(result.Tags))
		for i, t := range result.Tags {
			labels[i] = string(t)
		}
		fmt.Printf("Tactic: %s\n", strings.Join(labels, ", "))
	}
	if result.ParsedOTD != nil {
		fmt.Printf("Heard a number: %s\n", money.Format(*result.ParsedOTD))
	}
	fmt.Printf("Confidence: %s — %s\n", result.Confidence.Level, result.Confidence.Reason)
	printGuidance(result.Guidance, result.Source)
	for _, w := range result.Warnings {
		fmt.Printf("  ! %s\n", w)
	}
}

func coachAdvise(ctx context.Context, sess *flow.Session, caps flow.Capabilities) {
	rec, err := sess.Advise(ctx, caps)
	if err != nil {
		fmt.Printf("  ! %v\n", err)
		return
	}
	fmt.Printf("Call: %s. %s\n", strings.ToUpper(string(rec.Action)), rec.Rationale)
	if rec.EstimatedTarget != nil {
		fmt.Printf("Working target (estimate): %s\n", money.Format(*rec.EstimatedTarget))
	}
	fmt.Printf("Confidence: %s — %s\n", rec.Confidence.Level, rec.Confidence.Reason)
	printGuidance(rec.Guidance, rec.Source)
}

func printGuidance(out guidance.Output, source guidance.Source) {
	fmt.Printf("\nSay this: %q\n", out.SayThis)
	if out.IfPushback != "" {
		fmt.Printf("If they push back: %q\n", out.IfPushback)
	}
	if out.IfManager != "" {
		fmt.Printf("If the manager shows up: %q\n", out.IfManager)
	}
	if out.StopSignal != "" {
		fmt.Printf("Stop signal: %s\n", out.StopSignal)
	}
	if out.ClosingLine != "" {
		fmt.Printf("Closing line: %q\n", out.ClosingLine)
	}
	if out.NextMove != "" {
		fmt.Printf("Next move: %s\n", out.NextMove)
	}
	if out.LadderSummary != "" {
		fmt.Printf("Your ladder: %s\n", out.LadderSummary)
	}
	for _, rf := range out.RedFlags {
		fmt.Printf("  red flag: %s\n", rf)
	}
	for _, dns := range out.DoNotSay {
		fmt.Printf("  don't say: %s\n", dns)
	}
	if source == guidance.SourceFallback {
		fmt.Println("(playbook guidance)")
	}
}

func coachGoTo(sess *flow.Session, rest string) {
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || n > 4 {
		fmt.Println("Usage: step <0-4>")
		return
	}
	got := sess.GoTo(flow.Step(n))
	fmt.Printf("Now at: %s\n", got)
}
