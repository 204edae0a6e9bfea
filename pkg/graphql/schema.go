package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
)

// Run is a finished classification run exposed to queries.
type Run struct {
	ID        string
	Inference *asrel.Inference
	Verdicts  []asrel.Verdict // one per corpus path
}

// Server answers GraphQL queries over one Run.
type Server struct {
	run    Run
	schema graphql.Schema
	limits LimitConfig
}

// NewServer builds the schema for run.
func NewServer(run Run, limits LimitConfig) (*Server, error) {
	if run.Inference == nil {
		return nil, fmt.Errorf("graphql: run has no inference")
	}
	if len(run.Verdicts) != run.Inference.Corpus.Len() {
		return nil, fmt.Errorf("graphql: %d verdicts for %d paths", len(run.Verdicts), run.Inference.Corpus.Len())
	}
	if err := ValidateLimitConfig(limits); err != nil {
		return nil, err
	}

	s := &Server{run: run, limits: limits}
	schema, err := s.generateSchema()
	if err != nil {
		return nil, err
	}
	s.schema = schema
	return s, nil
}

// Schema returns the generated schema.
func (s *Server) Schema() graphql.Schema {
	return s.schema
}

type link struct {
	from, to asrel.ASN
	rel      asrel.Relationship
}

type relationshipCount struct {
	rel   asrel.Relationship
	count int
}

func listArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: -1},
		"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
	}
}

func intArg(p graphql.ResolveParams, name string) int {
	v, _ := p.Args[name].(int)
	return v
}

// generateSchema builds the Query type and the object types it returns
func (s *Server) generateSchema() (graphql.Schema, error) {
	inf := s.run.Inference

	linkType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Link",
		Fields: graphql.Fields{
			"from": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return string(p.Source.(link).from), nil
				},
			},
			"to": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return string(p.Source.(link).to), nil
				},
			},
			"relationship": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(link).rel.String(), nil
				},
			},
		},
	})

	asType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AS",
		Fields: graphql.Fields{
			"asn": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return string(p.Source.(asrel.ASN)), nil
				},
			},
			"degree": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return inf.DegreeOf(p.Source.(asrel.ASN)), nil
				},
			},
			"links": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(linkType))),
				Args: listArgs(),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					asn := p.Source.(asrel.ASN)
					neighbors := inf.NeighborsOf(asn)
					lo, hi := page(len(neighbors), intArg(p, "offset"), applyLimit(intArg(p, "limit"), s.limits))
					out := make([]link, 0, hi-lo)
					for _, n := range neighbors[lo:hi] {
						out = append(out, link{from: asn, to: n, rel: inf.Relationship(asn, n)})
					}
					return out, nil
				},
			},
		},
	})
	asType.AddFieldConfig("neighbors", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(asType))),
		Args: listArgs(),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			neighbors := inf.NeighborsOf(p.Source.(asrel.ASN))
			lo, hi := page(len(neighbors), intArg(p, "offset"), applyLimit(intArg(p, "limit"), s.limits))
			return neighbors[lo:hi], nil
		},
	})

	pathType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Path",
		Fields: graphql.Fields{
			"index": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(int), nil
				},
			},
			"asns": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					asns := inf.Corpus.ASNs(p.Source.(int))
					out := make([]string, len(asns))
					for i, a := range asns {
						out[i] = string(a)
					}
					return out, nil
				},
			},
			"relationships": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					rels := inf.PathRelationships(p.Source.(int))
					out := make([]string, len(rels))
					for i, r := range rels {
						out[i] = r.String()
					}
					return out, nil
				},
			},
			"verdict": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return s.run.Verdicts[p.Source.(int)].String(), nil
				},
			},
		},
	})

	countType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RelationshipCount",
		Fields: graphql.Fields{
			"relationship": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(relationshipCount).rel.String(), nil
				},
			},
			"count": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(relationshipCount).count, nil
				},
			},
		},
	})

	runType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Run",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(graphql.ResolveParams) (any, error) {
					return s.run.ID, nil
				},
			},
			"variant": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(graphql.ResolveParams) (any, error) {
					return inf.Variant.String(), nil
				},
			},
			"paths": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(graphql.ResolveParams) (any, error) {
					return inf.Corpus.Len(), nil
				},
			},
			"ases": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(graphql.ResolveParams) (any, error) {
					return inf.Corpus.NodeCount(), nil
				},
			},
			"links": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(graphql.ResolveParams) (any, error) {
					return inf.Neighbors.LinkCount(), nil
				},
			},
			"promoted": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(graphql.ResolveParams) (any, error) {
					return inf.Promoted, nil
				},
			},
			"notValleyFree": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(graphql.ResolveParams) (any, error) {
					n := 0
					for _, v := range s.run.Verdicts {
						if v == asrel.Red {
							n++
						}
					}
					return n, nil
				},
			},
			"relationships": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(countType))),
				Resolve: func(graphql.ResolveParams) (any, error) {
					counts := inf.Relationships.Counts()
					out := make([]relationshipCount, 0, len(counts))
					for _, rel := range asrel.Relationships {
						if counts[rel] > 0 {
							out = append(out, relationshipCount{rel: rel, count: counts[rel]})
						}
					}
					return out, nil
				},
			},
		},
	})

	queryFields := graphql.Fields{
		// Always include a health check query
		"health": &graphql.Field{
			Type: graphql.String,
			Resolve: func(graphql.ResolveParams) (any, error) {
				return "ok", nil
			},
		},
		"run": &graphql.Field{
			Type: graphql.NewNonNull(runType),
			Resolve: func(graphql.ResolveParams) (any, error) {
				return s.run, nil
			},
		},
		// as(asn: String!): AS, null when the AS never appeared
		"as": &graphql.Field{
			Type: asType,
			Args: graphql.FieldConfigArgument{
				"asn": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				asn := asrel.ASN(p.Args["asn"].(string))
				if _, ok := inf.Corpus.ID(asn); !ok {
					return nil, nil
				}
				return asn, nil
			},
		},
		"relationship": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Args: graphql.FieldConfigArgument{
				"from": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"to":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				from := asrel.ASN(p.Args["from"].(string))
				to := asrel.ASN(p.Args["to"].(string))
				return inf.Relationship(from, to).String(), nil
			},
		},
		"path": &graphql.Field{
			Type: pathType,
			Args: graphql.FieldConfigArgument{
				"index": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				i := intArg(p, "index")
				if i < 0 || i >= inf.Corpus.Len() {
					return nil, nil
				}
				return i, nil
			},
		},
		// paths(verdict: "GREEN"|"RED", limit, offset): matching corpus paths in input order
		"paths": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(pathType))),
			Args: graphql.FieldConfigArgument{
				"verdict": &graphql.ArgumentConfig{Type: graphql.String},
				"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: -1},
				"offset":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				verdict, filtered := p.Args["verdict"].(string)
				if filtered && verdict != asrel.Green.String() && verdict != asrel.Red.String() {
					return nil, fmt.Errorf("verdict must be GREEN or RED, got %q", verdict)
				}
				matches := make([]int, 0, len(s.run.Verdicts))
				for i, v := range s.run.Verdicts {
					if !filtered || v.String() == verdict {
						matches = append(matches, i)
					}
				}
				lo, hi := page(len(matches), intArg(p, "offset"), applyLimit(intArg(p, "limit"), s.limits))
				return matches[lo:hi], nil
			},
		},
		// valleyFree(asns: [String!]!): verdict of an arbitrary path under the inferred labels
		"valleyFree": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Args: graphql.FieldConfigArgument{
				"asns": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				raw, _ := p.Args["asns"].([]any)
				path := make([]asrel.ASN, len(raw))
				for i, v := range raw {
					path[i] = asrel.ASN(v.(string))
				}
				return asrel.ValleyFree(path, inf).String(), nil
			},
		},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: queryFields,
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}

	return schema, nil
}
