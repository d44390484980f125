package revalidate

import "github.com/gofiber/fiber/v2"

// Middleware serves cached GET responses until their path is revalidated.
// Only successful responses are stored; mutations bypass the cache.
func Middleware(cache *PathCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		path := c.OriginalURL()
		if status, contentType, body, ok := cache.Get(path); ok {
			c.Set(fiber.HeaderContentType, contentType)
			return c.Status(status).Send(body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status == fiber.StatusOK {
			cache.Put(path, status, string(c.Response().Header.ContentType()), c.Response().Body())
		}
		return nil
	}
}
