package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/mcp/stream", "MCP stream endpoint")
	candidateID := flag.String("candidate", "cand-1", "candidate for scout_stats")
	postingID := flag.String("posting", "post-1", "job posting for the workflow tools")
	companyID := flag.String("company", "acct-1", "company account owning the posting")
	flag.Parse()

	ctx := context.Background()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "scoutdesk-test-client",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint: *endpoint,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = session.Close() }()

	log.Printf("Connected to server (session ID: %s)\n", session.ID())

	company := map[string]any{
		"role":               "company",
		"company_account_id": *companyID,
		"session_id":         "test-client",
	}

	testListTools(ctx, session)
	testScoutStats(ctx, session, *candidateID)
	testPostingWorkflow(ctx, session, company, *postingID)
	testRelatedPostings(ctx, session, company, *postingID)

	fmt.Println("\nAll tests completed")
}

func testListTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: list tools")

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		log.Printf("list tools failed: %v", err)
		return
	}
	for _, tool := range res.Tools {
		fmt.Printf("- %s: %s\n", tool.Name, tool.Description)
	}
}

func testScoutStats(ctx context.Context, session *mcp.ClientSession, candidateID string) {
	fmt.Println("\nTEST: scout_stats")

	call(ctx, session, "scout_stats", map[string]any{
		"caller":       map[string]any{"role": "candidate", "candidate_id": candidateID},
		"candidate_id": candidateID,
	})
}

func testPostingWorkflow(ctx context.Context, session *mcp.ClientSession, company map[string]any, postingID string) {
	fmt.Println("\nTEST: posting_stage with an inverted salary range")

	call(ctx, session, "posting_stage", map[string]any{
		"caller":     company,
		"posting_id": postingID,
		"form": map[string]any{
			"title":      "Backend engineer",
			"salary_min": 900,
			"salary_max": 600,
		},
	})

	fmt.Println("\nTEST: posting_stage -> posting_confirm -> posting_commit -> posting_publication")

	ok := call(ctx, session, "posting_stage", map[string]any{
		"caller":     company,
		"posting_id": postingID,
		"form": map[string]any{
			"title":              "Backend engineer",
			"job_types":          []map[string]any{{"id": "jt-1", "name": "Backend"}},
			"industries":         []string{"IT", "SaaS"},
			"description":        "Build and run the matching platform",
			"position_summary":   "Senior individual contributor",
			"required_skills":    "Go, SQL",
			"other_requirements": "Business-level Japanese",
			"salary_min":         "600",
			"salary_max":         900,
			"locations":          "Tokyo",
			"working_hours":      "10:00-19:00, flex",
			"holidays":           "Weekends and national holidays",
			"selection_process":  "Two interviews",
			"appeal_points":      []string{"Remote friendly", "Small team"},
			"skills":             []string{"Go", "PostgreSQL"},
		},
	})
	if !ok {
		return
	}

	ref := map[string]any{"caller": company, "posting_id": postingID}
	if !call(ctx, session, "posting_confirm", ref) {
		return
	}
	if !call(ctx, session, "posting_commit", ref) {
		return
	}
	call(ctx, session, "posting_publication", map[string]any{
		"caller":           company,
		"posting_id":       postingID,
		"publication_type": "public",
	})
}

func testRelatedPostings(ctx context.Context, session *mcp.ClientSession, company map[string]any, postingID string) {
	fmt.Println("\nTEST: related_postings")

	call(ctx, session, "related_postings", map[string]any{
		"caller":     company,
		"posting_id": postingID,
		"limit":      3,
	})
}

// call runs one tool and reports whether it succeeded
func call(ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) bool {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		log.Printf("%s failed: %v", name, err)
		return false
	}

	printResult(result)
	if result.IsError {
		fmt.Printf("%s returned an error\n", name)
		return false
	}
	fmt.Printf("%s passed\n", name)
	return true
}

func printResult(res *mcp.CallToolResult) {
	for _, c := range res.Content {
		if txt, ok := c.(*mcp.TextContent); ok {
			fmt.Println(txt.Text)
		}
	}
}
