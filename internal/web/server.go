// Package web serves the lookup through a small HTML page and a JSON API.
package web

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"

	"FRELookup/internal/domain"
	"FRELookup/internal/usecase"
)

const dataUnavailableMessage = "Não foi possível carregar os dados da CVM. Tente novamente mais tarde."

// Server exposes Lookup over HTTP. Each browser session gets its own item
// discovery cache; datasets are shared.
type Server struct {
	app    *fiber.App
	lookup *usecase.Lookup
	store  *session.Store
	logger *slog.Logger
}

// NewServer wires the routes.
func NewServer(lookup *usecase.Lookup, sessionIdle time.Duration, log *slog.Logger) *Server {
	if sessionIdle <= 0 {
		sessionIdle = 2 * time.Hour
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "FRELookup",
			DisableStartupMessage: true,
		}),
		lookup: lookup,
		store: session.New(session.Config{
			Expiration:     sessionIdle,
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
			KeyGenerator:   uuid.NewString,
		}),
		logger: log,
	}

	s.app.Get("/", s.handleIndex)
	s.app.Post("/reload", s.handleReload)
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := s.app.Group("/api")
	api.Get("/companies", s.handleCompanies)
	api.Get("/resolve", s.handleResolve)

	return s
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving addr until ctx ends.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	s.info("http server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	res, err := s.resolve(c)
	if err != nil {
		if !errors.Is(err, domain.ErrDataUnavailable) {
			return err
		}
		s.warn("datasets unavailable", "error", err)
		return s.render(c, fiber.StatusServiceUnavailable, pageView{
			Title: "Visualizador de Documentos FRE – CVM",
			Fatal: dataUnavailableMessage,
		})
	}
	return s.render(c, fiber.StatusOK, newPageView(res))
}

func (s *Server) handleReload(c *fiber.Ctx) error {
	s.lookup.Reload()
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) handleCompanies(c *fiber.Ctx) error {
	companies, err := s.lookup.Companies(c.UserContext())
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(fiber.Map{"companies": companies})
}

type noticeJSON struct {
	Level   string `json:"level"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

type planJSON struct {
	Company string            `json:"company"`
	Link    string            `json:"link"`
	Fields  map[string]string `json:"fields"`
}

type resolveJSON struct {
	Company        string       `json:"company"`
	DocumentNumber string       `json:"documentNumber,omitempty"`
	Items          []string     `json:"items"`
	Item           string       `json:"item,omitempty"`
	URL            string       `json:"url,omitempty"`
	Plans          []planJSON   `json:"plans"`
	Notices        []noticeJSON `json:"notices"`
}

func (s *Server) handleResolve(c *fiber.Ctx) error {
	res, err := s.resolve(c)
	if err != nil {
		return s.apiError(c, err)
	}

	out := resolveJSON{
		Company:        res.Company,
		DocumentNumber: res.DocumentNumber,
		Items:          append([]string{}, res.Items...),
		Item:           res.Item,
		URL:            res.URL,
		Plans:          make([]planJSON, 0, len(res.Plans)),
		Notices:        make([]noticeJSON, 0, len(res.Notices)),
	}
	for _, p := range res.Plans {
		fields := make(map[string]string, len(res.PlanHeaders))
		for i, h := range res.PlanHeaders {
			if i < len(p.Values) {
				fields[h] = p.Values[i]
			}
		}
		out.Plans = append(out.Plans, planJSON{Company: p.Company, Link: p.Link, Fields: fields})
	}
	for _, n := range res.Notices {
		kind := ""
		if n.Kind != nil {
			kind = n.Kind.Error()
		}
		out.Notices = append(out.Notices, noticeJSON{Level: string(n.Level), Kind: kind, Message: n.Message})
	}
	return c.JSON(out)
}

func (s *Server) resolve(c *fiber.Ctx) (usecase.Result, error) {
	sessionID := ""
	sess, err := s.store.Get(c)
	if err != nil {
		s.warn("session unavailable", "error", err)
	} else {
		sessionID = sess.ID()
		if err := sess.Save(); err != nil {
			s.warn("session save failed", "error", err)
		}
	}

	return s.lookup.Resolve(c.UserContext(), usecase.Request{
		SessionID: sessionID,
		Company:   c.Query("empresa"),
		Item:      c.Query("item"),
	})
}

func (s *Server) apiError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, domain.ErrDataUnavailable) {
		status = fiber.StatusServiceUnavailable
	}
	s.warn("api request failed", "path", c.Path(), "error", err)
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) render(c *fiber.Ctx, status int, view pageView) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

func (s *Server) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Server) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
