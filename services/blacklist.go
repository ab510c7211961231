package services

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoadBlackList učitava najčešće lozinke iz fajla u mapu.
func LoadBlackList(filePath string) (map[string]bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	blackList := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		blackList[scanner.Text()] = true
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return blackList, nil
}

// TokenBlacklist čuva povučene tokene u Redisu do njihovog isteka.
type TokenBlacklist struct {
	client *redis.Client
}

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

func (b *TokenBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token je već istekao; nema šta da se čuva.
		return nil
	}
	return b.client.Set(ctx, "revoked:"+token, "1", ttl).Err()
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	res, err := b.client.Exists(ctx, "revoked:"+token).Result()
	if err != nil {
		return false, err
	}
	return res > 0, nil
}
