package builtin

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/kadirpekel/adkflow/pkg/embedders"
	"github.com/kadirpekel/adkflow/pkg/flowunit"
	"github.com/kadirpekel/adkflow/pkg/vector"
)

const UnitIDVectorSearch = "vector_search"

// VectorSearchConfig is the node's decoded configuration. Backend selects
// which vector.Provider NewProvider constructs; Chromem needs nothing beyond
// an optional persist path, Qdrant needs a reachable host.
type VectorSearchConfig struct {
	Backend        string `mapstructure:"backend"` // "chromem" (default) or "qdrant"
	Collection     string `mapstructure:"collection"`
	TopK           int    `mapstructure:"top_k"`
	ChromemPersist string `mapstructure:"chromem_persist_path"`
	QdrantHost     string `mapstructure:"qdrant_host"`
	QdrantPort     int    `mapstructure:"qdrant_port"`
}

// vectorSearchUnit embeds inputs["query"] and, when inputs["documents"] is
// present, upserts each document before searching -- so a single node can
// both populate and query a small collection within one run, or be split
// into an indexing pass and a query pass across two node instances sharing
// a collection name and persist path.
type vectorSearchUnit struct {
	embedder *embedders.OllamaEmbedder
}

// NewVectorSearch wires an embedded chromem-go or remote Qdrant collection
// behind the FlowUnit contract, embedding text with an Ollama embedder
// (spec component 17: "embedded vector search").
func NewVectorSearch() flowunit.Unit {
	return &vectorSearchUnit{embedder: embedders.NewOllamaEmbedder()}
}

func (u *vectorSearchUnit) UnitID() string { return UnitIDVectorSearch }

func (u *vectorSearchUnit) ValidateConfig(rawConfig map[string]any) error {
	_, err := decodeVectorSearchConfig(rawConfig)
	return err
}

func (u *vectorSearchUnit) Run(ctx context.Context, inputs map[string]any, rawConfig map[string]any) (map[string]any, error) {
	cfg, err := decodeVectorSearchConfig(rawConfig)
	if err != nil {
		return nil, err
	}

	provider, err := vector.NewProvider(providerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("vector_search: %w", err)
	}
	defer provider.Close()

	if err := provider.CreateCollection(ctx, cfg.Collection, u.embedder.GetDimension()); err != nil {
		return nil, fmt.Errorf("vector_search: create collection: %w", err)
	}

	if docs, ok := inputs["documents"].([]any); ok {
		for i, d := range docs {
			text := fmt.Sprintf("%v", d)
			emb, err := u.embedder.Embed(text)
			if err != nil {
				return nil, fmt.Errorf("vector_search: embedding document %d: %w", i, err)
			}
			id := fmt.Sprintf("doc-%d", i)
			meta := map[string]any{"content": text}
			if err := provider.Upsert(ctx, cfg.Collection, id, emb, meta); err != nil {
				return nil, fmt.Errorf("vector_search: indexing document %d: %w", i, err)
			}
		}
	}

	query, _ := inputs["query"].(string)
	if query == "" {
		return map[string]any{"results": []any{}}, nil
	}

	queryEmb, err := u.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("vector_search: embedding query: %w", err)
	}

	hits, err := provider.Search(ctx, cfg.Collection, queryEmb, cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("vector_search: %w", err)
	}

	results := make([]any, 0, len(hits))
	for _, h := range hits {
		results = append(results, map[string]any{
			"id":       h.ID,
			"score":    h.Score,
			"content":  h.Content,
			"metadata": h.Metadata,
		})
	}
	return map[string]any{"results": results}, nil
}

func (u *vectorSearchUnit) Descriptor() flowunit.Descriptor {
	return flowunit.Descriptor{
		Description: "Embeds a query (and optional documents to index) and runs a similarity search against a chromem-go or Qdrant collection.",
		Inputs: []flowunit.Port{
			{Name: "query", Kind: flowunit.PortKindString, Required: true},
			{Name: "documents", Kind: flowunit.PortKindAny, Description: "Optional list of texts to index before searching."},
		},
		Outputs: []flowunit.Port{
			{Name: "results", Kind: flowunit.PortKindAny, Description: "Ranked list of {id, score, content, metadata}."},
		},
	}
}

func decodeVectorSearchConfig(raw map[string]any) (VectorSearchConfig, error) {
	cfg := VectorSearchConfig{Backend: "chromem", Collection: "default", TopK: 5}
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("vector_search: invalid config: %w", err)
	}
	if cfg.Collection == "" {
		cfg.Collection = "default"
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return cfg, nil
}

func providerConfig(cfg VectorSearchConfig) *vector.ProviderConfig {
	switch cfg.Backend {
	case "qdrant":
		return &vector.ProviderConfig{
			Type: vector.ProviderQdrant,
			Qdrant: &vector.QdrantConfig{
				Host: cfg.QdrantHost,
				Port: cfg.QdrantPort,
			},
		}
	default:
		return &vector.ProviderConfig{
			Type:    vector.ProviderChromem,
			Chromem: &vector.ChromemConfig{PersistPath: cfg.ChromemPersist},
		}
	}
}

var (
	_ flowunit.Unit            = (*vectorSearchUnit)(nil)
	_ flowunit.ConfigValidator = (*vectorSearchUnit)(nil)
	_ flowunit.Describable     = (*vectorSearchUnit)(nil)
)
