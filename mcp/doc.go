// Package mcp connects tool registries to the Model Context Protocol.
//
// It works in both directions:
//
//   - NewServer exposes every tool in a tool.Registry to MCP clients.
//     Calls are validated and run through Registry.Execute.
//   - Remote connects to an MCP server and implements tool.Source, so the
//     server's tools take part in Registry.Discover like local ones.
//
// Serving the registry over stdio:
//
//	if err := mcp.ServeStdio(registry); err != nil {
//	    log.Fatal(err)
//	}
//
// Discovering tools from a subprocess:
//
//	remote, err := mcp.ConnectStdio(ctx, "market-data-server", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer remote.Close()
//	err = registry.Discover(ctx, tool.Static(local...), remote)
package mcp
