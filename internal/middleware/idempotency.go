package middleware

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// IdempotencyMiddleware replays cached responses for repeated
// X-Correlation-ID values. The watch queues completion logs offline and
// replays them after connectivity gaps, sometimes more than once.
// Keys are scoped per user so device-minted IDs cannot collide across
// accounts; runs after JWT auth.
func IdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		default:
			return c.Next()
		}

		correlationID := c.Get("X-Correlation-ID")
		if correlationID == "" {
			return c.Next()
		}

		key := "idempotency:" + GetUserID(c) + ":" + correlationID

		cached, err := redisClient.Get(c.UserContext(), key).Bytes()
		if err == nil {
			if status, body, ok := splitCachedResponse(cached); ok {
				c.Set("X-Idempotent-Replay", "true")
				c.Set("Content-Type", "application/json")
				return c.Status(status).Send(body)
			}
		}

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		// fasthttp recycles the response buffer; copy before handing it
		// to the background write.
		value := append([]byte(strconv.Itoa(status)+"|"), body...)
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			redisClient.Set(bgCtx, key, value, ttl)
		}()

		return nil
	}
}

// splitCachedResponse unpacks the "<status>|<body>" cache encoding.
func splitCachedResponse(cached []byte) (int, []byte, bool) {
	i := bytes.IndexByte(cached, '|')
	if i < 0 {
		return 0, nil, false
	}
	status, err := strconv.Atoi(string(cached[:i]))
	if err != nil {
		return 0, nil, false
	}
	return status, cached[i+1:], true
}
