// Package web is the presentation layer: every handler hands its page data to
// Render, which answers with an HTML view or, for API clients, the same data as JSON.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

//go:embed views/*.html
var views embed.FS

// NewEngine returns the template engine over the embedded views.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(views, "views")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}

// WantsJSON reports whether the client prefers JSON over HTML.
func WantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

func Render(c *fiber.Ctx, view string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if WantsJSON(c) {
		return c.JSON(data)
	}
	return c.Render(view, data)
}
