package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/source"
)

var (
	flagTxType      string
	flagTxRecurring bool
	flagTxLimit     int

	flagAddName      string
	flagAddAmount    string
	flagAddDate      string
	flagAddType      string
	flagAddRecurring bool
	flagAddFrequency string
	flagAddInterval  int
)

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"ls"},
	Short:   "List recorded transactions",
	RunE:    runTransactions,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction by hand",
	Example: `  runway add --name Rent --amount 1500 --date 2025-03-01 --type bill --recurring --frequency monthly
  runway add --name Salary --amount 2100 --date 2025-03-07 --type paycheck --recurring --frequency biweekly`,
	RunE: runAdd,
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a recorded transaction by id or unique id prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	transactionsCmd.Flags().StringVarP(&flagTxType, "type", "t", "", "Only show this type")
	transactionsCmd.Flags().BoolVar(&flagTxRecurring, "recurring", false, "Only show recurring transactions")
	transactionsCmd.Flags().IntVarP(&flagTxLimit, "limit", "l", 0, "Show only the most recent N (0 for all)")

	addCmd.Flags().StringVar(&flagAddName, "name", "", "Transaction name (required)")
	addCmd.Flags().StringVar(&flagAddAmount, "amount", "", "Amount; sign only matters for internal transfers (required)")
	addCmd.Flags().StringVar(&flagAddDate, "date", "", "Date YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&flagAddType, "type", "expense", "bill, paycheck, income, expense, internal_transfer, or other")
	addCmd.Flags().BoolVar(&flagAddRecurring, "recurring", false, "Repeats on a schedule")
	addCmd.Flags().StringVar(&flagAddFrequency, "frequency", "", "weekly, biweekly, monthly, yearly, or pay_period")
	addCmd.Flags().IntVar(&flagAddInterval, "interval", 1, "Repeat every N frequency units")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(rmCmd)
}

func runTransactions(_ *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	txns, err := st.LoadTransactions()
	if err != nil {
		return err
	}

	var typ model.Type
	if flagTxType != "" {
		if typ, err = source.ParseType(flagTxType); err != nil {
			return err
		}
	}
	txns = filterTransactions(txns, typ, flagTxRecurring, flagTxLimit)
	if len(txns) == 0 {
		fmt.Println("\n  No transactions recorded.")
		fmt.Println("  Add one with `runway add` or import statements with `runway import`.")
		return nil
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(transactionsTable(txns, s.currency())))
	fmt.Println()
	return nil
}

// transactionsTable lists txns with their net effect on the balance and a
// net total footer.
func transactionsTable(txns []model.Transaction, cur string) cli.Table {
	rows := make([][]string, 0, len(txns))
	net := decimal.Zero
	for _, tx := range txns {
		in, out := tx.Flow()
		amt := in.Sub(out)
		net = net.Add(amt)
		rows = append(rows, []string{
			tx.Date.String(),
			tx.Name,
			string(tx.Type),
			cli.RenderAmount(amt, cli.FormatSigned(amt, cur)),
			describeSchedule(tx),
			cli.RenderMuted(shortID(tx.ID)),
		})
	}
	return cli.Table{
		Title:   fmt.Sprintf("Transactions (%s)", cli.FormatNumber(int64(len(txns)))),
		Headers: []string{"Date", "Name", "Type", "Amount", "Repeats", "ID"},
		Rows:    rows,
		Amounts: []int{3},
		Footer:  []string{"", "Net", "", cli.FormatSigned(net, cur)},
	}
}

// filterTransactions keeps date order and trims to the latest limit entries.
func filterTransactions(txns []model.Transaction, typ model.Type, recurringOnly bool, limit int) []model.Transaction {
	var out []model.Transaction
	for _, tx := range txns {
		if typ != "" && tx.Type != typ {
			continue
		}
		if recurringOnly && !tx.Recurring {
			continue
		}
		out = append(out, tx)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func describeSchedule(tx model.Transaction) string {
	if !tx.Recurring {
		return "-"
	}
	if tx.Schedule == nil || tx.Schedule.Frequency == "" {
		return "inferred"
	}
	if tx.Schedule.Interval > 1 {
		return fmt.Sprintf("%s x%d", tx.Schedule.Frequency, tx.Schedule.Interval)
	}
	return string(tx.Schedule.Frequency)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runAdd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	tx, err := buildTransaction(uuid.NewString(), s.today)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.AddTransaction(tx); err != nil {
		return fmt.Errorf("saving transaction: %w", err)
	}

	log := logger.FromContext(cmd.Context())
	log.Debug().Str("id", tx.ID).Str("type", string(tx.Type)).Msg("transaction added")

	fmt.Printf("  Added %s %s on %s (%s)\n",
		tx.Name, cli.FormatMoney(tx.Amount, s.currency()), tx.Date, shortID(tx.ID))
	return nil
}

// buildTransaction turns the add flags into a validated transaction.
func buildTransaction(id string, today date.Date) (model.Transaction, error) {
	amount, err := source.ParseAmount(flagAddAmount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("--amount: %w", err)
	}
	typ, err := source.ParseType(flagAddType)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("--type: %w", err)
	}

	on := today
	if flagAddDate != "" {
		if on, err = source.ParseDate(flagAddDate); err != nil {
			return model.Transaction{}, fmt.Errorf("--date: %w", err)
		}
	}

	tx := model.Transaction{
		ID:        id,
		Name:      strings.TrimSpace(flagAddName),
		Amount:    amount,
		Date:      on,
		Type:      typ,
		Recurring: flagAddRecurring || flagAddFrequency != "",
	}
	if typ != model.TypeInternalTransfer {
		tx.Amount = amount.Abs()
	}
	if flagAddFrequency != "" {
		freq, err := source.ParseFrequency(flagAddFrequency)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("--frequency: %w", err)
		}
		if flagAddInterval < 1 {
			return model.Transaction{}, errors.New("--interval must be at least 1")
		}
		tx.Schedule = &model.Schedule{Frequency: freq, Interval: flagAddInterval}
	}

	if err := source.Validate(tx); err != nil {
		return model.Transaction{}, err
	}
	return tx, nil
}

func runRm(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	txns, err := st.LoadTransactions()
	if err != nil {
		return err
	}
	tx, err := resolveID(txns, args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteTransaction(tx.ID); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s on %s (%s)\n", tx.Name, tx.Date, shortID(tx.ID))
	return nil
}

// resolveID finds the transaction whose id equals or uniquely starts with prefix.
func resolveID(txns []model.Transaction, prefix string) (model.Transaction, error) {
	if strings.TrimSpace(prefix) == "" {
		return model.Transaction{}, errors.New("empty transaction id")
	}
	var matches []model.Transaction
	for _, tx := range txns {
		if tx.ID == prefix {
			return tx, nil
		}
		if strings.HasPrefix(tx.ID, prefix) {
			matches = append(matches, tx)
		}
	}
	switch len(matches) {
	case 0:
		return model.Transaction{}, fmt.Errorf("no transaction with id %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return model.Transaction{}, fmt.Errorf("id prefix %q matches %d transactions", prefix, len(matches))
	}
}
