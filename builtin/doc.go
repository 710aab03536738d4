// Package builtin provides the tools and workflows MoneyPilot ships with.
//
// The tools are market-agnostic helpers. The price_change workflow runs
// without a model and shows conditional routing; the analyst workflow
// wraps an LLM query in a single agent step and is registered only when a
// model is configured.
package builtin
