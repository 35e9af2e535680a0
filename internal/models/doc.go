// Package models defines the core domain models for splitledger.
//
// # Ledger
//
//   - Group: a set of members sharing expenses
//   - Member: a participant in a group, optionally linked to a User
//   - Expense: a shared cost paid by one member and divided by splits
//   - Settlement: a recorded real-world payment between two members
//
// # Receipts
//
//   - Receipt: a scanned receipt with tax, tip and an optional printed total
//   - ReceiptItem: one line on a receipt; role flags mark tax, tip and total lines
//   - ItemClaim: a member's fractional stake in one receipt item
//
// # Design Principles
//
//  1. Relationships are ID strings, never pointers.
//  2. Amounts are plain float64 currency values; rounding lives in package money.
//  3. Guest members (no linked User) are first-class.
package models
