package documents_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"

	"conciergeapi/src/domain"
	"conciergeapi/src/helper/env"
	"conciergeapi/src/infra/postgres"
	"conciergeapi/src/repositories"
	"conciergeapi/src/services/documents"
	"conciergeapi/src/test_artefacts/comparer"
	"conciergeapi/src/test_artefacts/stubs"
	"conciergeapi/src/test_artefacts/test_seeder"
)

var _ = Describe("CurationLifecycle", func() {
	var (
		pool            *pgxpool.Pool
		testSeeder      test_seeder.TestSeeder
		documentService *documents.DocumentService
		entityStub      stubs.EntityStub
		ctx             context.Context
		err             error
	)

	dbHost := env.MustGetString("TEST_DB_HOST")
	dbPort := env.GetString("TEST_DB_PORT", "5432")
	dbname := env.MustGetString("TEST_DB_NAME")
	dbUser := env.MustGetString("TEST_DB_USER")
	dbPassword := env.MustGetString("TEST_DB_PASSWORD")
	maxConnections := env.GetInt("TEST_DB_MAX_POOL_CONNECTIONS", 25)

	BeforeEach(func() {
		ctx = context.Background()

		pool, err = postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
		if err != nil {
			panic(err)
		}

		entityRepository := repositories.NewEntityRepository(pool)
		cachedEntityRepository := repositories.NewCachedEntityRepository(entityRepository, nil)
		curationRepository := repositories.NewCurationRepository(pool)
		documentQueryRepository := repositories.NewDocumentQueryRepository(pool)
		documentService = documents.NewDocumentService(cachedEntityRepository, curationRepository, documentQueryRepository, nil)
		testSeeder = test_seeder.New(pool)

		testSeeder.TruncateTables(ctx)

		// Toda curadoria precisa de uma entity alvo já persistida
		entityStub = stubs.NewEntityStub()
		testSeeder.InsertEntity(ctx, entityStub.ID(), entityStub.Type(), entityStub.Doc())
	})

	AfterEach(func() {
		if pool != nil {
			pool.Close()
		}
	})

	Context("when creating curations", func() {
		When("calling CreateCuration referencing an existing entity", func() {
			It("persists the curation with version 1", func() {
				// ARRANGE
				stub := stubs.NewCurationStub(entityStub.ID())

				// ACT
				created, err := documentService.CreateCuration(ctx, stub.ID(), stub.EntityID(), stub.Doc())

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(created.ID).To(Equal(stub.ID()))
				Expect(created.EntityID).To(Equal(entityStub.ID()))
				Expect(created.Version).To(Equal(int64(1)))
				Expect(cmp.Diff(stub.Doc(), created.Doc, comparer.JSONRawMessage())).To(BeEmpty())

				fetched, err := documentService.GetCurationByID(ctx, stub.ID())
				Expect(err).NotTo(HaveOccurred())
				Expect(cmp.Diff(created, fetched,
					comparer.JSONRawMessage(),
					comparer.TimeWithinTolerance(5),
				)).To(BeEmpty())
			})
		})

		When("calling CreateCuration referencing a missing entity", func() {
			It("returns ErrReferentialViolation", func() {
				// ARRANGE
				stub := stubs.NewCurationStub("rest_missing")

				// ACT
				_, err := documentService.CreateCuration(ctx, stub.ID(), stub.EntityID(), stub.Doc())

				// ASSERT
				Expect(err).To(MatchError(domain.ErrReferentialViolation))
			})
		})

		When("calling CreateCuration with a document missing required keys", func() {
			It("returns ErrInvalidDocument", func() {
				// ARRANGE
				doc := json.RawMessage(`{"curator": {"id": "ana"}}`)

				// ACT
				_, err := documentService.CreateCuration(ctx, "cur_invalid", entityStub.ID(), doc)

				// ASSERT
				Expect(err).To(MatchError(domain.ErrInvalidDocument))
				Expect(err.Error()).To(ContainSubstring("categories"))
			})
		})

		When("calling CreateCuration with a duplicated id", func() {
			It("returns ErrDuplicateKey", func() {
				// ARRANGE
				stub := stubs.NewCurationStub(entityStub.ID())
				testSeeder.InsertCuration(ctx, stub.ID(), stub.EntityID(), stub.Doc())

				// ACT
				_, err := documentService.CreateCuration(ctx, stub.ID(), stub.EntityID(), stub.Doc())

				// ASSERT
				Expect(err).To(MatchError(domain.ErrDuplicateKey))
			})
		})
	})

	Context("when listing curations of an entity", func() {
		When("calling GetCurationsByEntity", func() {
			It("returns only the curations of that entity", func() {
				// ARRANGE
				first := stubs.NewCurationStub(entityStub.ID())
				second := stubs.NewCurationStub(entityStub.ID())
				testSeeder.InsertCuration(ctx, first.ID(), first.EntityID(), first.Doc())
				testSeeder.InsertCuration(ctx, second.ID(), second.EntityID(), second.Doc())

				otherEntity := stubs.NewEntityStub()
				testSeeder.InsertEntity(ctx, otherEntity.ID(), otherEntity.Type(), otherEntity.Doc())
				other := stubs.NewCurationStub(otherEntity.ID())
				testSeeder.InsertCuration(ctx, other.ID(), other.EntityID(), other.Doc())

				// ACT
				curations, err := documentService.GetCurationsByEntity(ctx, entityStub.ID())

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(curations).To(HaveLen(2))
				ids := []string{curations[0].ID, curations[1].ID}
				Expect(ids).To(ConsistOf(first.ID(), second.ID()))
			})
		})
	})

	Context("when updating curations", func() {
		When("calling UpdateCuration with the current version", func() {
			It("merges the patch and increments the version", func() {
				// ARRANGE
				stub := stubs.NewCurationStub(entityStub.ID()).WithCategories(map[string]interface{}{
					"mood":     []interface{}{"lively"},
					"occasion": []interface{}{"date_night"},
				})
				testSeeder.InsertCuration(ctx, stub.ID(), stub.EntityID(), stub.Doc())

				patch := json.RawMessage(`{"categories": {"mood": ["quiet", "cozy"]}}`)

				// ACT
				updated, err := documentService.UpdateCuration(ctx, stub.ID(), patch, 1)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(updated.Version).To(Equal(int64(2)))

				var doc map[string]interface{}
				Expect(json.Unmarshal(updated.Doc, &doc)).To(Succeed())
				categories := doc["categories"].(map[string]interface{})
				Expect(categories["mood"]).To(Equal([]interface{}{"quiet", "cozy"}))
				Expect(categories["occasion"]).To(Equal([]interface{}{"date_night"}))
			})
		})

		When("calling UpdateCuration with a stale version", func() {
			It("returns ErrVersionConflict", func() {
				// ARRANGE
				stub := stubs.NewCurationStub(entityStub.ID())
				testSeeder.InsertCuration(ctx, stub.ID(), stub.EntityID(), stub.Doc())

				_, err := documentService.UpdateCuration(ctx, stub.ID(), json.RawMessage(`{"notes": "first"}`), 1)
				Expect(err).NotTo(HaveOccurred())

				// ACT
				_, err = documentService.UpdateCuration(ctx, stub.ID(), json.RawMessage(`{"notes": "second"}`), 1)

				// ASSERT
				Expect(err).To(MatchError(domain.ErrVersionConflict))
			})
		})
	})

	Context("when deleting curations", func() {
		When("calling DeleteCuration", func() {
			It("removes the curation and keeps the entity", func() {
				// ARRANGE
				stub := stubs.NewCurationStub(entityStub.ID())
				testSeeder.InsertCuration(ctx, stub.ID(), stub.EntityID(), stub.Doc())

				// ACT
				err := documentService.DeleteCuration(ctx, stub.ID())

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(testSeeder.SelectCurationsByEntityID(ctx, entityStub.ID())).To(BeEmpty())

				_, found := testSeeder.SelectEntityByID(ctx, entityStub.ID())
				Expect(found).To(BeTrue())
			})
		})

		When("calling DeleteCuration for an id that does not exist", func() {
			It("succeeds without error", func() {
				// ACT
				err := documentService.DeleteCuration(ctx, "cur_missing")

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
			})
		})
	})
})
