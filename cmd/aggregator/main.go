package main

import (
	"log"

	"github.com/azielinski/smog-pipeline/internal/aggregator"
	"github.com/azielinski/smog-pipeline/internal/config"
)

func main() {
	cfg, err := config.LoadAggregator()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := aggregator.New(cfg).Run(); err != nil {
		log.Fatalf("aggregation failed: %v", err)
	}
}
