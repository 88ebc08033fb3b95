package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

// Minimal probe for the stored snapshot shape. Older builds tracked a
// per-round boolean instead of the ReactionsRemaining counter; those
// snapshots load with every participant unable to react.
type participantData struct {
	ReactionTaken      json.RawMessage `json:"ReactionTaken"`
	ReactionsRemaining json.RawMessage `json:"ReactionsRemaining"`
}

type encounterData struct {
	Participants []participantData `json:"Participants"`
}

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning for stale encounter snapshots...")

	// Find all encounter keys
	iter := client.Scan(ctx, 0, "encounter:*", 0).Iterator()

	var staleKeys []string
	var checkedCount int

	for iter.Next(ctx) {
		key := iter.Val()
		checkedCount++

		// Get the data
		data, err := client.Get(ctx, key).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}

		// Try to parse it
		var encData encounterData
		if err := json.Unmarshal([]byte(data), &encData); err != nil {
			fmt.Printf("✗ Corrupted JSON in %s\n", key)
			staleKeys = append(staleKeys, key)
			continue
		}

		// Snapshots written before the reaction counter carry the old
		// boolean field and no counter at all.
		for _, p := range encData.Participants {
			if p.ReactionTaken != nil && p.ReactionsRemaining == nil {
				fmt.Printf("✗ Old format detected in %s: participant still tracks ReactionTaken\n", key)
				staleKeys = append(staleKeys, key)
				break
			}
		}
	}

	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	fmt.Printf("\nChecked %d keys, found %d stale entries\n", checkedCount, len(staleKeys))

	if len(staleKeys) == 0 {
		fmt.Println("No stale snapshots found!")
		return
	}

	fmt.Println("\nStale keys:")
	for _, key := range staleKeys {
		fmt.Printf("  - %s\n", key)
	}

	// Ask for confirmation before deletion
	fmt.Print("\nDo you want to DELETE these stale snapshots? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response == "yes" {
		for _, key := range staleKeys {
			if err := client.Del(ctx, key).Err(); err != nil {
				fmt.Printf("Failed to delete %s: %v\n", key, err)
			} else {
				fmt.Printf("Deleted %s\n", key)
			}
		}
		fmt.Println("\nCleanup complete!")
	} else {
		fmt.Println("Aborted - no changes made")
	}
}
