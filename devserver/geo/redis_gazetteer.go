package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/thebestitaly/mapyourfriends-emergent/models"
)

const (
	keyGeo   = "cities:geo"
	keyData  = "cities:data"
	keyIndex = "cities:index"
)

// RedisGazetteer keeps city positions in a Redis GEO set, with a hash of city records and a hash mapping every
// normalized name and alias to the city key.
type RedisGazetteer struct {
	client *redis.Client
}

func NewRedisGazetteer(client *redis.Client) *RedisGazetteer {
	return &RedisGazetteer{client: client}
}

// Seed replaces the gazetteer contents with cities.
func (g *RedisGazetteer) Seed(ctx context.Context, cities []models.City) error {
	if err := g.client.Del(ctx, keyGeo, keyData, keyIndex).Err(); err != nil {
		return fmt.Errorf("clear gazetteer: %w", err)
	}
	log.Println("Seeding cities into Redis...")
	seeded := 0
	for _, c := range cities {
		key := Normalize(c.Name)
		data, err := json.Marshal(c)
		if err != nil {
			log.Printf("Failed to marshal city %s: %v", c.Name, err)
			continue
		}
		if err := g.client.HSet(ctx, keyData, key, data).Err(); err != nil {
			log.Printf("Failed to store city %s in Redis: %v", c.Name, err)
			continue
		}
		err = g.client.GeoAdd(ctx, keyGeo, &redis.GeoLocation{
			Name:      key,
			Longitude: c.Lng,
			Latitude:  c.Lat,
		}).Err()
		if err != nil {
			log.Printf("Failed to add city %s to Redis geo set: %v", c.Name, err)
			continue
		}
		for _, alias := range keysOf(c) {
			if err := g.client.HSet(ctx, keyIndex, alias, key).Err(); err != nil {
				log.Printf("Failed to index %q for %s: %v", alias, c.Name, err)
			}
		}
		seeded++
	}
	log.Printf("Seeded %d cities into Redis", seeded)
	return nil
}

func (g *RedisGazetteer) Lookup(ctx context.Context, name string) (models.City, bool, error) {
	for _, candidate := range candidates(name) {
		key, err := g.client.HGet(ctx, keyIndex, candidate).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return models.City{}, false, err
		}
		return g.load(ctx, key)
	}
	return models.City{}, false, nil
}

func (g *RedisGazetteer) load(ctx context.Context, key string) (models.City, bool, error) {
	raw, err := g.client.HGet(ctx, keyData, key).Result()
	if err == redis.Nil {
		return models.City{}, false, nil
	}
	if err != nil {
		return models.City{}, false, err
	}
	var c models.City
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return models.City{}, false, fmt.Errorf("decode city %s: %w", key, err)
	}
	pos, err := g.client.GeoPos(ctx, keyGeo, key).Result()
	if err != nil {
		return models.City{}, false, err
	}
	if len(pos) == 1 && pos[0] != nil {
		c.Lat, c.Lng = pos[0].Latitude, pos[0].Longitude
	}
	return c, true, nil
}
