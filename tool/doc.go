// Package tool defines callable capabilities, their validation, and the
// registry that makes them discoverable to agents.
//
// # Basic Usage
//
// Define tool arguments as a struct with tags, then build the tool with
// Func:
//
//	type QuoteArgs struct {
//	    Symbol string `json:"symbol" desc:"Ticker symbol" required:"true"`
//	    Venue  string `json:"venue" desc:"Listing venue" enum:"nyse,nasdaq"`
//	}
//
//	quote := tool.MustFunc("get_quote", "Latest price for a symbol",
//	    func(ctx context.Context, args QuoteArgs) (any, error) {
//	        return map[string]any{"symbol": args.Symbol, "price": 101.5}, nil
//	    })
//
//	registry := tool.NewRegistry(nil)
//	err := registry.Discover(ctx, tool.Static(quote))
//
// # Supported Struct Tags
//
//   - json: parameter name
//   - desc: parameter description shown to the model
//   - required: "true" marks the parameter as mandatory
//   - enum: comma-separated allowed values
//
// # Discovery
//
// Tools reach a registry only through Register or Discover. Discover
// takes an explicit list of sources, such as a Static set or an MCP
// server, registers everything they offer, and seals the registry.
// Nothing is registered as a side effect of importing a package.
package tool
