//go:build datagen_postgres
// +build datagen_postgres

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"conciergeapi/src/domain/entities"
	"conciergeapi/src/helper/env"
	"conciergeapi/src/infra/postgres"

	"github.com/go-faker/faker/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DataBundle struct {
	Entity    entities.Entity
	Curations []entities.Curation
}

// Vocabulário controlado para as categorias, alinhado com as consultas de
// explode que o serviço roda em produção.
var (
	entityTypes = []entities.EntityType{
		entities.EntityTypeRestaurant,
		entities.EntityTypeHotel,
		entities.EntityTypeAttraction,
		entities.EntityTypeEvent,
	}
	statuses     = []string{"draft", "in_review", "published", "archived"}
	moodConcepts = []string{"lively", "quiet", "cozy", "romantic", "crowded", "family_friendly"}
	occasions    = []string{"date_night", "business_lunch", "celebration", "casual", "solo"}
	cuisines     = []string{"brazilian", "italian", "japanese", "steakhouse", "seafood", "vegan"}
)

func newSQLClient() (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_HOST")
	dbPort := env.GetString("DB_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := 100
	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

func main() {
	rand.Seed(time.Now().UnixNano())

	numEntities := flag.Int("entities", -1, "Número de entities a serem criadas. Use -1 para infinito.")
	bulkSize := flag.Int("bulk-size", 1000, "Tamanho do lote por transação")
	curationsPerEntity := flag.Int("curations-per-entity", 3, "Máximo de curadorias por entity")
	numConsumers := flag.Int("consumers", 8, "Consumers concorrentes")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := newSQLClient()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	chanSize := (*bulkSize) * (*numConsumers) * 5
	dataChan := make(chan DataBundle, chanSize)

	var wg sync.WaitGroup
	var totalProcessed, totalErrors int64
	startTime := time.Now()

	// Métricas a cada 2 segundos
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				processed := atomic.LoadInt64(&totalProcessed)
				errors := atomic.LoadInt64(&totalErrors)
				elapsed := time.Since(startTime)
				rate := float64(processed) / elapsed.Seconds()

				fmt.Printf("📊 Processed: %d | Errors: %d | Rate: %.1f/s | Elapsed: %v\n",
					processed, errors, rate, elapsed.Round(time.Second))
			}
		}
	}()

	for i := 0; i < *numConsumers; i++ {
		wg.Add(1)
		go consumer(ctx, &wg, db, dataChan, *bulkSize, i+1, &totalProcessed, &totalErrors)
	}

	wg.Add(1)
	go producer(ctx, &wg, dataChan, *numEntities, *curationsPerEntity)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n🛑 Shutdown signal received, stopping...")
		cancel()
	}()

	wg.Wait()

	elapsed := time.Since(startTime)
	processed := atomic.LoadInt64(&totalProcessed)
	errors := atomic.LoadInt64(&totalErrors)
	avgRate := float64(processed) / elapsed.Seconds()

	fmt.Printf("\n🏁 Seeding finished!\n")
	fmt.Printf("📊 Total processed: %d\n", processed)
	fmt.Printf("❌ Total errors: %d\n", errors)
	fmt.Printf("⏱️  Total time: %v\n", elapsed.Round(time.Second))
	fmt.Printf("🚀 Average rate: %.1f records/s\n", avgRate)
}

func producer(ctx context.Context, wg *sync.WaitGroup, dataChan chan<- DataBundle, numEntities, curationsPerEntity int) {
	defer wg.Done()
	defer close(dataChan)

	isInfinite := numEntities == -1
	entityCount := 0

	for isInfinite || entityCount < numEntities {
		select {
		case <-ctx.Done():
			fmt.Println("Producer stopping.")
			return
		default:
			entity := generateFakeEntity()
			curations := generateFakeCurations(entity, rand.Intn(curationsPerEntity+1))

			select {
			case dataChan <- DataBundle{Entity: entity, Curations: curations}:
				entityCount++
				if entityCount%1000 == 0 {
					fmt.Printf("Generated %d entities\n", entityCount)
					time.Sleep(10 * time.Millisecond)
				}
			case <-ctx.Done():
				return
			}
		}
	}
}

func consumer(ctx context.Context, wg *sync.WaitGroup, db *pgxpool.Pool, dataChan <-chan DataBundle, bulkSize, consumerID int, totalProcessed, totalErrors *int64) {
	defer wg.Done()
	log.Printf("🚀 Consumer %d started", consumerID)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	bundles := make([]DataBundle, 0, bulkSize)

	flush := func() {
		if len(bundles) == 0 {
			return
		}
		if err := bulkInsert(ctx, db, bundles); err != nil {
			log.Printf("❌ Consumer %d: ERROR on bulk insert: %v", consumerID, err)
			atomic.AddInt64(totalErrors, 1)
		} else {
			atomic.AddInt64(totalProcessed, int64(len(bundles)))
		}
		bundles = make([]DataBundle, 0, bulkSize)
	}

	for {
		select {
		case b, ok := <-dataChan:
			if !ok {
				flush()
				log.Printf("✅ Consumer %d stopping.", consumerID)
				return
			}

			bundles = append(bundles, b)
			if len(bundles) >= bulkSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-ctx.Done():
			log.Printf("🛑 Consumer %d received stop signal.", consumerID)
			return
		}
	}
}

func bulkInsert(ctx context.Context, db *pgxpool.Pool, bundles []DataBundle) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. Entities em um único INSERT via unnest
	entityIDs := make([]string, 0, len(bundles))
	entityTypeValues := make([]string, 0, len(bundles))
	entityDocs := make([]string, 0, len(bundles))
	for _, b := range bundles {
		entityIDs = append(entityIDs, b.Entity.ID)
		entityTypeValues = append(entityTypeValues, string(b.Entity.Type))
		entityDocs = append(entityDocs, string(b.Entity.Doc))
	}

	insertEntities := `
		INSERT INTO entities (id, type, doc, created_at, updated_at, version)
		SELECT unnest($1::text[]), unnest($2::text[]), unnest($3::jsonb[]), now(), now(), 1
		ON CONFLICT (id) DO NOTHING
	`
	if _, err = tx.Exec(ctx, insertEntities, entityIDs, entityTypeValues, entityDocs); err != nil {
		return fmt.Errorf("failed to insert entities: %w", err)
	}

	// 2. Curations, idem
	curationIDs := make([]string, 0, len(bundles)*2)
	curationEntityIDs := make([]string, 0, len(bundles)*2)
	curationDocs := make([]string, 0, len(bundles)*2)
	for _, b := range bundles {
		for _, c := range b.Curations {
			curationIDs = append(curationIDs, c.ID)
			curationEntityIDs = append(curationEntityIDs, c.EntityID)
			curationDocs = append(curationDocs, string(c.Doc))
		}
	}

	if len(curationIDs) > 0 {
		insertCurations := `
			INSERT INTO curations (id, entity_id, doc, created_at, updated_at, version)
			SELECT unnest($1::text[]), unnest($2::text[]), unnest($3::jsonb[]), now(), now(), 1
			ON CONFLICT (id) DO NOTHING
		`
		if _, err = tx.Exec(ctx, insertCurations, curationIDs, curationEntityIDs, curationDocs); err != nil {
			return fmt.Errorf("failed to insert curations: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ==== FAKE DATA ====

func generateFakeEntity() entities.Entity {
	entityType := entityTypes[rand.Intn(len(entityTypes))]
	name := faker.GetRealAddress().City + " " + faker.Word() + " " + faker.LastName()

	doc := map[string]interface{}{
		"name":   name,
		"status": statuses[rand.Intn(len(statuses))],
		"rating": float64(rand.Intn(40)+10) / 10.0,
		"contact": map[string]string{
			"email": faker.Email(),
			"phone": faker.Phonenumber(),
		},
		"address": map[string]string{
			"street":      faker.GetRealAddress().Address,
			"city":        faker.GetRealAddress().City,
			"state":       faker.GetRealAddress().State,
			"postal_code": faker.GetRealAddress().PostalCode,
		},
		"metadata": []interface{}{
			map[string]interface{}{"cuisine": cuisines[rand.Intn(len(cuisines))]},
		},
	}
	docBytes, _ := json.Marshal(doc)

	return entities.Entity{
		ID:   fmt.Sprintf("%s_%s", entityType, faker.UUIDHyphenated()),
		Type: entityType,
		Doc:  docBytes,
	}
}

func generateFakeCurations(entity entities.Entity, count int) []entities.Curation {
	curations := make([]entities.Curation, 0, count)

	for i := 0; i < count; i++ {
		doc := map[string]interface{}{
			"curator": map[string]string{
				"id":    faker.Username(),
				"name":  faker.Name(),
				"email": faker.Email(),
			},
			"categories": map[string]interface{}{
				"mood":     pickConcepts(moodConcepts, rand.Intn(3)+1),
				"occasion": pickConcepts(occasions, rand.Intn(2)+1),
			},
			"notes": faker.Sentence(),
		}
		docBytes, _ := json.Marshal(doc)

		curations = append(curations, entities.Curation{
			ID:       "cur_" + faker.UUIDHyphenated(),
			EntityID: entity.ID,
			Doc:      docBytes,
		})
	}

	return curations
}

// pickConcepts sorteia n conceitos distintos do vocabulário.
func pickConcepts(vocabulary []string, n int) []string {
	if n > len(vocabulary) {
		n = len(vocabulary)
	}

	shuffled := make([]string, len(vocabulary))
	copy(shuffled, vocabulary)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:n]
}
