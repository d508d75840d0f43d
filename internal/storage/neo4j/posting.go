package neo4j

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/scoutdesk/internal/domain"
	"github.com/honeycarbs/scoutdesk/internal/repository"

	pkgneo4j "github.com/honeycarbs/scoutdesk/pkg/neo4j"
)

// Ensure PostingIndex implements repository.PostingIndex
var _ repository.PostingIndex = (*PostingIndex)(nil)

// PostingIndex keeps visible job postings in Neo4j for related-posting queries
type PostingIndex struct {
	client *pkgneo4j.Client
}

// NewPostingIndex creates a PostingIndex with a Neo4j client
func NewPostingIndex(client *pkgneo4j.Client) *PostingIndex {
	return &PostingIndex{
		client: client,
	}
}

const indexQuery = `
	MERGE (p:Posting {id: $posting.id})
	SET p.title = $posting.title,
	    p.groupId = $posting.groupId,
	    p.accountId = $posting.accountId,
	    p.publicationType = $posting.publicationType,
	    p.salaryMin = $posting.salaryMin,
	    p.salaryMax = $posting.salaryMax,
	    p.publishedAt = CASE WHEN $posting.publishedAt IS NULL THEN null ELSE datetime({epochMillis: $posting.publishedAt}) END
	WITH p
	OPTIONAL MATCH (p)-[old:REQUIRES|LOCATED_IN|IN_INDUSTRY|POSTED_BY]->()
	DELETE old
	WITH DISTINCT p
	MERGE (g:Group {id: $posting.groupId})
	MERGE (p)-[:POSTED_BY]->(g)
	FOREACH (skill IN $posting.skills |
		MERGE (s:Skill {key: skill.key})
		SET s.name = skill.name
		MERGE (p)-[:REQUIRES]->(s)
	)
	FOREACH (loc IN $posting.locations |
		MERGE (l:Location {key: loc.key})
		SET l.name = loc.name
		MERGE (p)-[:LOCATED_IN]->(l)
	)
	FOREACH (ind IN $posting.industries |
		MERGE (i:Industry {key: ind.key})
		SET i.name = ind.name
		MERGE (p)-[:IN_INDUSTRY]->(i)
	)
`

// Index merges the posting node and replaces its outgoing edges
func (r *PostingIndex) Index(ctx context.Context, p domain.JobPosting) error {
	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, indexQuery, map[string]interface{}{"posting": postingParams(p)})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j: index posting %s: %w", p.ID, err)
	}
	return nil
}

// Remove detaches and deletes posting nodes
func (r *PostingIndex) Remove(ctx context.Context, postingIDs ...string) error {
	if len(postingIDs) == 0 {
		return nil
	}

	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (p:Posting)
			WHERE p.id IN $ids
			DETACH DELETE p
		`, map[string]interface{}{"ids": postingIDs})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j: remove postings: %w", err)
	}
	return nil
}

// Related finds postings sharing skills or locations, skills weighted double
func (r *PostingIndex) Related(ctx context.Context, postingID string, limit int) ([]repository.RelatedPosting, error) {
	if limit <= 0 {
		limit = 10
	}

	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (p:Posting {id: $postingId})
		MATCH (related:Posting)
		WHERE related.id <> $postingId
		OPTIONAL MATCH (p)-[:REQUIRES]->(s:Skill)<-[:REQUIRES]-(related)
		WITH p, related, collect(DISTINCT s.name) AS sharedSkills
		OPTIONAL MATCH (p)-[:LOCATED_IN]->(l:Location)<-[:LOCATED_IN]-(related)
		WITH related, sharedSkills, collect(DISTINCT l.name) AS sharedPlaces
		WITH related, sharedSkills, sharedPlaces,
		     (size(sharedSkills) * 2 + size(sharedPlaces)) AS relevance
		WHERE relevance > 0
		RETURN related.id AS id, related.title AS title, related.groupId AS groupId,
		       sharedSkills, sharedPlaces, relevance
		ORDER BY relevance DESC, id
		LIMIT $limit
	`

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]interface{}{
			"postingId": postingID,
			"limit":     limit,
		})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return parseRelated(records), nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: related postings of %s: %w", postingID, err)
	}

	return out.([]repository.RelatedPosting), nil
}

func parseRelated(records []*neo4j.Record) []repository.RelatedPosting {
	related := make([]repository.RelatedPosting, 0, len(records))
	for _, rec := range records {
		m := rec.AsMap()
		rp := repository.RelatedPosting{
			ID:           asString(m["id"]),
			Title:        asString(m["title"]),
			GroupID:      asString(m["groupId"]),
			SharedSkills: asStrings(m["sharedSkills"]),
			SharedPlaces: asStrings(m["sharedPlaces"]),
		}
		if n, ok := m["relevance"].(int64); ok {
			rp.Relevance = n
		}
		related = append(related, rp)
	}
	return related
}

// postingParams flattens a posting into Cypher parameters. Names are keyed
// case-insensitively so "Go" and "go" share one Skill node.
func postingParams(p domain.JobPosting) map[string]interface{} {
	var publishedAt interface{}
	if p.PublishedAt != nil {
		publishedAt = p.PublishedAt.UnixMilli()
	}

	var salaryMin, salaryMax interface{}
	if p.SalaryMin != nil {
		salaryMin = int64(*p.SalaryMin)
	}
	if p.SalaryMax != nil {
		salaryMax = int64(*p.SalaryMax)
	}

	return map[string]interface{}{
		"id":              p.ID,
		"title":           p.Title,
		"groupId":         p.GroupID,
		"accountId":       p.CompanyAccountID,
		"publicationType": string(p.PublicationType),
		"salaryMin":       salaryMin,
		"salaryMax":       salaryMax,
		"publishedAt":     publishedAt,
		"skills":          namedNodes(p.Skills),
		"locations":       namedNodes(p.Locations),
		"industries":      namedNodes(p.Industries),
	}
}

func namedNodes(names []string) []map[string]interface{} {
	seen := make(map[string]bool, len(names))
	out := make([]map[string]interface{}, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, map[string]interface{}{"key": key, "name": n})
	}
	return out
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asStrings(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
