package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quoteArgs struct {
	Symbol string `json:"symbol" desc:"Ticker symbol" required:"true"`
	Venue  string `json:"venue" enum:"nyse,nasdaq"`
}

func marketRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	r := tool.NewRegistry(nil)
	r.MustRegister(tool.MustFunc("get_quote", "Latest price for a symbol",
		func(ctx context.Context, args quoteArgs) (any, error) {
			return map[string]any{"symbol": args.Symbol, "price": 101.5}, nil
		}))
	r.MustRegister(tool.New(ai.ToolSchema{Name: "market_status", Description: "Whether markets are open"},
		func(context.Context, map[string]any) (any, error) { return "open", nil }))
	r.MustRegister(tool.New(ai.ToolSchema{Name: "halt", Description: "Always fails"},
		func(context.Context, map[string]any) (any, error) { return nil, errors.New("trading halted") }))
	return r
}

func startClient(t *testing.T, reg *tool.Registry) *client.Client {
	t.Helper()
	ctx := context.Background()
	c, err := client.NewInProcessClient(NewServer(reg))
	require.NoError(t, err)
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() { _ = c.Close() })

	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: "test-client", Version: "1.0.0"},
		},
	})
	require.NoError(t, err)
	return c
}

func TestServerListsRegistryTools(t *testing.T) {
	c := startClient(t, marketRegistry(t))

	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	names := make([]string, len(res.Tools))
	for i, tl := range res.Tools {
		names[i] = tl.Name
	}
	assert.ElementsMatch(t, []string{"get_quote", "market_status", "halt"}, names)
}

func TestServerCallsTools(t *testing.T) {
	c := startClient(t, marketRegistry(t))
	ctx := context.Background()

	t.Run("success returns JSON text", func(t *testing.T) {
		res, err := c.CallTool(ctx, mcp.CallToolRequest{
			Params: mcp.CallToolParams{Name: "get_quote", Arguments: map[string]any{"symbol": "ABC"}},
		})
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.JSONEq(t, `{"symbol":"ABC","price":101.5}`, resultText(res))
	})

	t.Run("invalid arguments are an error result", func(t *testing.T) {
		res, err := c.CallTool(ctx, mcp.CallToolRequest{
			Params: mcp.CallToolParams{Name: "get_quote", Arguments: map[string]any{"venue": "lse"}},
		})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), `parameter "symbol"`)
	})

	t.Run("handler failure is an error result", func(t *testing.T) {
		res, err := c.CallTool(ctx, mcp.CallToolRequest{
			Params: mcp.CallToolParams{Name: "halt", Arguments: map[string]any{}},
		})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "trading halted")
	})
}

func TestRemoteSource(t *testing.T) {
	ctx := context.Background()
	remote, err := ConnectInProcess(ctx, NewServer(marketRegistry(t), WithName("market-data")), WithPrefix("md_"))
	require.NoError(t, err)
	defer remote.Close()

	assert.Equal(t, "market-data", remote.Server())

	local := tool.NewRegistry(nil)
	require.NoError(t, local.Discover(ctx, remote))
	assert.Equal(t, []string{"md_get_quote", "md_halt", "md_market_status"}, local.Names())

	quote, err := local.Get("md_get_quote")
	require.NoError(t, err)
	schema := quote.Schema()
	assert.Equal(t, "Latest price for a symbol", schema.Description)
	assert.Equal(t, []string{"symbol"}, schema.RequiredParams())
	venue, ok := schema.Param("venue")
	require.True(t, ok)
	assert.Equal(t, []string{"nyse", "nasdaq"}, venue.Enum)

	t.Run("results are decoded", func(t *testing.T) {
		got, err := local.Execute(ctx, "md_get_quote", map[string]any{"symbol": "ABC"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"symbol": "ABC", "price": 101.5}, got)

		got, err = local.Execute(ctx, "md_market_status", nil)
		require.NoError(t, err)
		assert.Equal(t, "open", got)
	})

	t.Run("local validation runs before the remote call", func(t *testing.T) {
		_, err := local.Execute(ctx, "md_get_quote", map[string]any{})
		var perr *tool.ParamError
		assert.ErrorAs(t, err, &perr)
	})

	t.Run("remote failure", func(t *testing.T) {
		_, err := local.Execute(ctx, "md_halt", nil)
		var rerr *RemoteError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, "halt", rerr.Tool)
		assert.Contains(t, rerr.Message, "trading halted")
	})
}
