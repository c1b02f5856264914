// Package models defines the core domain records for splitledger.
//
// # Records
//
//   - Group: a set of members sharing one ledger (read-only to this service)
//   - Member: a person who can pay for or owe on expenses
//   - Expense: an amount paid by one member and divided into Shares
//   - Settlement: a direct payment from one member to another
//   - Balance: a derived net position, never stored
//
// # Money
//
// Every amount is an int64 in the minor unit of its currency (cents for USD,
// paise for INR, yen for JPY). Conversion from user input happens once at the
// edge of the system, see package money.
//
// # Lifecycle
//
// Expenses and Settlements are appended to a group's history exactly once and
// never mutated. Balances are recomputed from that history on demand.
package models
