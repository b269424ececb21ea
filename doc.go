// Package ledger keeps the books of a small batch bakery: a catalog of
// products and ingredients, recipes, sales and expenses.
//
// The whole ledger of a user is a single Document, stored as JSON under a
// namespaced key of a KV. The Store loads it lazily, migrating documents left
// by older versions under legacy keys, or seeding a starter catalog, and
// writes it back after every change. Reads degrade: a document that is not a
// JSON object is set aside under a ::corrupt::<millis> key and replaced by a
// fresh one, and field values of the wrong kind are read leniently. Writes
// surface their errors and leave the in-memory document unchanged.
//
// The costing functions (RecipeCost, EffectiveCost, SaleCost) and the metrics
// (ComputeMetrics) are pure: they compute everything from the current
// catalog, so editing a recipe reprices the cost of goods of past sales while
// sale prices stay as recorded.
//
// Amounts are exact decimals (Money, Quantity). JSON numbers are read
// leniently: a string is read up to the end of its leading number, anything
// else reads as zero.
//
// This package serves as the foundational logic for the `smallbatch`
// command-line tool.
package ledger
