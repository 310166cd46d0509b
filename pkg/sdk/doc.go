// Package reportdex embeds the research-report search service in a Go
// program: the same filters, full-text search and result caching as the
// HTTP API, without the HTTP hop.
//
//	client, _ := reportdex.New(ctx,
//	    reportdex.WithSQLite("reports.db"),
//	    reportdex.WithRedis("localhost:6379", ""),
//	)
//	defer client.Close()
//
//	page, _ := client.Search(ctx, reportdex.SearchParams{
//	    Industries:   []string{"1046"},
//	    ContentQuery: "新能源 光伏",
//	    SortBy:       "publishDate",
//	})
//
//	opts, _ := client.FilterOptions(ctx)
//	_, _ = client.Revalidate(ctx, "documents")
package reportdex
