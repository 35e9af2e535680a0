package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/rpc"
)

// groupSnapshot is the input of the balances command.
type groupSnapshot struct {
	Members     []rpc.Member      `json:"members"`
	Expenses    []*rpc.Expense    `json:"expenses"`
	Settlements []*rpc.Settlement `json:"settlements"`
}

// receiptSnapshot is the input of the receipt command. Claims may be given
// inline on each item.
type receiptSnapshot struct {
	Members []rpc.Member `json:"members"`
	Receipt *rpc.Receipt `json:"receipt"`
}

func readSnapshot(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func toMembers(in []rpc.Member) []models.Member {
	out := make([]models.Member, len(in))
	for i, m := range in {
		out[i] = m.Model()
	}
	return out
}

func computeBalances(snap groupSnapshot) *rpc.GetBalancesResponse {
	members := toMembers(snap.Members)
	var expenses []models.Expense
	for _, e := range snap.Expenses {
		if e != nil {
			expenses = append(expenses, e.Model())
		}
	}
	var settlements []models.Settlement
	for _, s := range snap.Settlements {
		if s != nil {
			settlements = append(settlements, s.Model())
		}
	}

	lines := calculator.SummarizeBalances(members, expenses, settlements)
	net := make(map[string]float64, len(lines))
	for _, b := range lines {
		net[b.MemberID] = b.NetBalance
	}
	return rpc.BalancesFrom(lines, calculator.SimplifyDebts(net, members))
}

func computeReceipt(snap receiptSnapshot) *rpc.ReceiptSummary {
	var receipt models.Receipt
	if snap.Receipt != nil {
		receipt = snap.Receipt.Model()
	}
	var claims []models.ItemClaim
	for _, item := range receipt.Items {
		claims = append(claims, item.Claims...)
	}
	summary := calculator.SummarizeReceipt(receipt, receipt.Items, claims, toMembers(snap.Members))
	return rpc.ReceiptSummaryFrom(summary)
}

func balancesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Print net balances and suggested settlements for a group snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var snap groupSnapshot
			if err := readSnapshot(file, &snap); err != nil {
				return err
			}
			slog.Info("Computing balances",
				"members", len(snap.Members),
				"expenses", len(snap.Expenses),
				"settlements", len(snap.Settlements),
			)
			return writeJSON(cmd.OutOrStdout(), computeBalances(snap))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "snapshot file, - for stdin")
	return cmd
}

func receiptCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Print each member's share of a receipt snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var snap receiptSnapshot
			if err := readSnapshot(file, &snap); err != nil {
				return err
			}
			if snap.Receipt == nil {
				return fmt.Errorf("%s has no receipt", file)
			}
			slog.Info("Summarizing receipt", "items", len(snap.Receipt.Items), "members", len(snap.Members))
			return writeJSON(cmd.OutOrStdout(), computeReceipt(snap))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "snapshot file, - for stdin")
	return cmd
}
