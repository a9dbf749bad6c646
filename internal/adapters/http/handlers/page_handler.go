package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// PageHandler serves the console page shell. The browser app hydrates
// from /api/v1/session/me after load; the server's job is only to
// deliver the shell to navigations the route guard admits.
type PageHandler struct{}

// NewPageHandler creates a new page handler
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Cryptex Console</title>
  <link rel="stylesheet" href="/assets/app.css">
</head>
<body>
  <div id="root"></div>
  <script src="/assets/app.js"></script>
</body>
</html>
`

// Shell serves the single-page app shell.
func (h *PageHandler) Shell(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Set("Cache-Control", "no-store")
	return c.SendString(pageShell)
}
