// Package grantdex embeds the grantdex search pipeline in a Go program.
//
// The client loads a grant corpus from a YAML/JSON file, an in-memory slice, Redis
// JSON documents or a SQL table, and serves local fuzzy search, AI-assisted search,
// sector classification and grant matching over it without running the HTTP server.
//
// # Local search
//
//	client, _ := grantdex.New(ctx, grantdex.WithGrantsFile("data/grants.yaml"))
//	defer client.Close()
//
//	page, _ := client.Search(ctx, grantdex.Query{
//	    Text:    "solceller lantbruk",
//	    Sort:    grantdex.SortRelevance,
//	    Filters: grantdex.Filters{DeadlinePreset: "3months"},
//	})
//
// # AI-assisted search
//
// Any JSON-mode chat model can be plugged in through the Completer interface:
//
//	client, _ := grantdex.New(ctx,
//	    grantdex.WithRedis("localhost:6379", ""),
//	    grantdex.WithCompleter("openai", myModel),
//	)
//	page, _ := client.Search(ctx, grantdex.Query{Text: "vätgas för tunga transporter", Mode: grantdex.ModeAI})
//	brief, _ := client.MatchBrief(ctx, projectDescription)
package grantdex
