package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// ActorHeader carries the identity asserted by the upstream auth gate.
	ActorHeader = "X-Actor"
	// ActorLocalKey is the Fiber locals key holding the resolved actor.
	ActorLocalKey = "actor"
	// DefaultActor is used when no identity was supplied.
	DefaultActor = "System"
)

// Actor stores the caller identity from X-Actor, or DefaultActor, in locals.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := strings.TrimSpace(c.Get(ActorHeader))
		if actor == "" {
			actor = DefaultActor
		}
		c.Locals(ActorLocalKey, actor)
		return c.Next()
	}
}

// ActorFrom returns the actor stored by Actor. When the middleware has not run,
// as for requests rejected by the server before routing, it reads X-Actor
// directly and falls back to DefaultActor.
func ActorFrom(c *fiber.Ctx) string {
	if s, ok := c.Locals(ActorLocalKey).(string); ok && s != "" {
		return s
	}
	if s := strings.TrimSpace(c.Get(ActorHeader)); s != "" {
		return s
	}
	return DefaultActor
}
