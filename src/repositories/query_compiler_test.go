package repositories_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"conciergeapi/src/domain"
	"conciergeapi/src/repositories"
)

var _ = Describe("CompileQuery", func() {

	Context("base query shape", func() {
		When("compiling an empty request over entities", func() {
			It("selects every column, orders by id and paginates with defaults", func() {
				// ACT
				sql, args, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(sql).To(ContainSubstring("SELECT d.id, d.type, d.doc, d.created_at, d.updated_at, d.version"))
				Expect(sql).To(ContainSubstring("FROM entities d"))
				Expect(sql).NotTo(ContainSubstring("WHERE"))
				Expect(sql).To(ContainSubstring("ORDER BY d.id ASC"))
				Expect(sql).To(ContainSubstring("LIMIT $1 OFFSET $2"))
				Expect(args).To(Equal([]interface{}{repositories.DefaultQueryLimit, 0}))
			})
		})

		When("compiling over curations", func() {
			It("selects entity_id instead of type", func() {
				// ACT
				sql, _, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.CurationDocuments,
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(sql).To(ContainSubstring("SELECT d.id, d.entity_id, d.doc"))
				Expect(sql).To(ContainSubstring("FROM curations d"))
			})
		})

		When("the document set is unknown", func() {
			It("fails with the invalid query error", func() {
				// ACT
				_, _, err := repositories.CompileQuery(domain.QueryRequest{From: "reservations"})

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidQuery))
			})
		})
	})

	Context("filters", func() {
		When("filtering a document path with eq", func() {
			It("compares the jsonb extraction against a bound parameter", func() {
				// ACT
				sql, args, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Filters: []domain.QueryFilter{
						{Path: "$.status", Operator: domain.OperatorEq, Value: "active"},
					},
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(sql).To(ContainSubstring("WHERE (d.doc #> '{status}') = $1::jsonb"))
				Expect(args[0]).To(Equal(`"active"`))
			})
		})

		When("filtering a nested document path with gte", func() {
			It("extracts the full path and keeps the value out of the statement text", func() {
				// ACT
				sql, args, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Filters: []domain.QueryFilter{
						{Path: "$.sync.attempts", Operator: domain.OperatorGte, Value: 42},
					},
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(sql).To(ContainSubstring("(d.doc #> '{sync,attempts}') >= $1::jsonb"))
				Expect(sql).NotTo(ContainSubstring("42"))
				Expect(args[0]).To(Equal("42"))
			})
		})

		When("the compared value is numeric or boolean", func() {
			It("binds the JSON encoding so jsonb compares by value, not as text", func() {
				// ACT
				_, args, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Filters: []domain.QueryFilter{
						{Path: "$.rating", Operator: domain.OperatorGt, Value: 4.5},
						{Path: "$.sync.enabled", Operator: domain.OperatorEq, Value: true},
					},
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(args[0]).To(Equal("4.5"))
				Expect(args[1]).To(Equal("true"))
			})
		})

		When("filtering with in", func() {
			It("compiles to a membership test over the provided list", func() {
				// ACT
				sql, args, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Filters: []domain.QueryFilter{
						{Path: "$.status", Operator: domain.OperatorIn, Value: []interface{}{"active", "draft"}},
					},
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(sql).To(ContainSubstring("(d.doc #>> '{status}') = ANY($1)"))
				Expect(args[0]).To(Equal([]string{"active", "draft"}))
			})
		})

		When("in receives a scalar value", func() {
			It("fails with the invalid query error", func() {
				// ACT
				_, _, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Filters: []domain.QueryFilter{
						{Path: "$.status", Operator: domain.OperatorIn, Value: "active"},
					},
				})

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidQuery))
			})
		})

		When("filtering with contains", func() {
			It("compiles to an array membership test over the whole document", func() {
				// ACT
				sql, args, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.CurationDocuments,
					Filters: []domain.QueryFilter{
						{Path: "$.categories.mood", Operator: domain.OperatorContains, Value: "lively"},
					},
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(sql).To(ContainSubstring("d.doc @> $1::jsonb"))
				Expect(args[0]).To(MatchJSON(`{"categories": {"mood": ["lively"]}}`))
			})
		})

		When("filtering with like", func() {
			It("compiles to a case-insensitive substring match", func() {
				// ACT
				sql, args, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Filters: []domain.QueryFilter{
						{Path: "$.name", Operator: domain.OperatorLike, Value: "Fogo"},
					},
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(sql).To(ContainSubstring("LOWER((d.doc #>> '{name}')) LIKE LOWER($1)"))
				Expect(args[0]).To(Equal("%Fogo%"))
			})
		})

		When("filtering a structural column by simple name", func() {
			It("compares the column directly", func() {
				// ACT
				sql, args, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Filters: []domain.QueryFilter{
						{Path: "type", Operator: domain.OperatorEq, Value: "restaurant"},
					},
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(sql).To(ContainSubstring("WHERE d.type = $1"))
				Expect(args[0]).To(Equal("restaurant"))
			})
		})

		When("multiple filters are given", func() {
			It("conjoins them with AND", func() {
				// ACT
				sql, _, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Filters: []domain.QueryFilter{
						{Path: "type", Operator: domain.OperatorEq, Value: "restaurant"},
						{Path: "$.status", Operator: domain.OperatorNe, Value: "archived"},
					},
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(sql).To(ContainSubstring("d.type = $1 AND (d.doc #> '{status}') <> $2::jsonb"))
			})
		})

		When("the filter path is not a document path, alias or column", func() {
			It("fails with the invalid query error", func() {
				// ACT
				_, _, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Filters: []domain.QueryFilter{
						{Path: "$.name'); DROP TABLE entities; --", Operator: domain.OperatorEq, Value: "x"},
					},
				})

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidQuery))
			})
		})

		When("the filter has no value", func() {
			It("fails with the invalid query error", func() {
				// ACT
				_, _, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Filters: []domain.QueryFilter{
						{Path: "$.status", Operator: domain.OperatorEq},
					},
				})

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidQuery))
			})
		})
	})

	Context("explode", func() {
		When("exploding an array path", func() {
			It("synthesizes a lateral join exposing the alias", func() {
				// ACT
				sql, args, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.CurationDocuments,
					Explode: &domain.QueryExplode{
						Path: "$.categories.mood",
						As:   "mood",
					},
					Filters: []domain.QueryFilter{
						{Path: "mood", Operator: domain.OperatorEq, Value: "lively"},
					},
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(sql).To(ContainSubstring("mood.value AS exploded"))
				Expect(sql).To(ContainSubstring("CROSS JOIN LATERAL jsonb_array_elements_text("))
				Expect(sql).To(ContainSubstring("CASE WHEN jsonb_typeof((d.doc #> '{categories,mood}')) = 'array' THEN (d.doc #> '{categories,mood}') ELSE '[]'::jsonb END"))
				Expect(sql).To(ContainSubstring(") AS mood(value)"))
				Expect(sql).To(ContainSubstring("WHERE mood.value = $1"))
				Expect(args[0]).To(Equal("lively"))
			})
		})

		When("the explode alias is not a valid identifier", func() {
			It("fails with the invalid query error", func() {
				// ACT
				_, _, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.CurationDocuments,
					Explode: &domain.QueryExplode{
						Path: "$.categories.mood",
						As:   "mood; DROP TABLE curations",
					},
				})

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidQuery))
			})
		})

		When("the explode alias collides with the table alias or a SQL keyword", func() {
			It("fails with the invalid query error instead of emitting broken SQL", func() {
				for _, alias := range []string{"d", "select", "VALUE"} {
					// ACT
					_, _, err := repositories.CompileQuery(domain.QueryRequest{
						From: domain.CurationDocuments,
						Explode: &domain.QueryExplode{
							Path: "$.categories.mood",
							As:   alias,
						},
					})

					// ASSERT
					Expect(err).To(MatchError(domain.ErrInvalidQuery))
				}
			})
		})

		When("the explode path is a structural column", func() {
			It("fails with the invalid query error", func() {
				// ACT
				_, _, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.CurationDocuments,
					Explode: &domain.QueryExplode{
						Path: "entity_id",
						As:   "x",
					},
				})

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidQuery))
			})
		})
	})

	Context("sort and pagination", func() {
		When("sorting by a document path descending", func() {
			It("orders by the text extraction and breaks ties by id", func() {
				// ACT
				sql, _, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Sort: &domain.QuerySort{Path: "$.name", Direction: domain.SortDesc},
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(sql).To(ContainSubstring("ORDER BY (d.doc #>> '{name}') DESC, d.id ASC"))
			})
		})

		When("the sort direction is unknown", func() {
			It("fails with the invalid query error", func() {
				// ACT
				_, _, err := repositories.CompileQuery(domain.QueryRequest{
					From: domain.EntityDocuments,
					Sort: &domain.QuerySort{Path: "$.name", Direction: "sideways"},
				})

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidQuery))
			})
		})

		When("the requested limit exceeds the ceiling", func() {
			It("clamps it to the configured maximum", func() {
				// ACT
				_, args, err := repositories.CompileQuery(domain.QueryRequest{
					From:   domain.EntityDocuments,
					Limit:  9999,
					Offset: 30,
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(args).To(Equal([]interface{}{repositories.MaxQueryLimit, 30}))
			})
		})

		When("the offset is negative", func() {
			It("resets it to zero", func() {
				// ACT
				_, args, err := repositories.CompileQuery(domain.QueryRequest{
					From:   domain.EntityDocuments,
					Offset: -10,
				})

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(args).To(Equal([]interface{}{repositories.DefaultQueryLimit, 0}))
			})
		})
	})
})
