// Command main runs the database seeder for postline.
package main

import (
	"context"
	"flag"
	"log"

	"postline/internal/config"
	"postline/internal/database"
	"postline/internal/middleware"
	"postline/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of random users to create")
	postsPerUser := flag.Int("posts", 4, "Posts to create per random user")
	followsPerUser := flag.Int("follows", 5, "Follow attempts per random user")
	maxDays := flag.Int("days", 90, "Spread post dates over this many days")
	fixtures := flag.String("fixtures", "", "YAML fixtures file to load; \"default\" loads the built-in set")
	shouldClean := flag.Bool("clean", false, "Delete all users, posts and follows before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 uses the clock)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s, err := seed.NewSeeder(db, seed.Options{
		NumUsers:       *numUsers,
		PostsPerUser:   *postsPerUser,
		FollowsPerUser: *followsPerUser,
		MaxDays:        *maxDays,
		RandomSeed:     *randomSeed,
	})
	if err != nil {
		log.Fatalf("Seeder setup failed: %v", err)
	}

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if *fixtures != "" {
		fx := seed.DefaultFixtures()
		if *fixtures != "default" {
			if fx, err = seed.LoadFixtures(*fixtures); err != nil {
				log.Fatalf("Loading fixtures failed: %v", err)
			}
		}
		sum, err := s.ApplyFixtures(ctx, fx)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
		log.Printf("Fixtures: %s", sum)
	}

	sum, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Random data: %s", sum)
	log.Printf("All generated users have the password: %s", seed.DefaultPassword)
}
