// internal/pipeline/artifacts.go
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"autobuild/internal/common/database"
	stderrors "autobuild/internal/common/errors"
	"autobuild/internal/common/logger"
)

// ArtifactStore receives generated artifacts for persistence. The write is a
// side effect of generation; the generated text is identical either way.
type ArtifactStore interface {
	Write(ctx context.Context, name, content string) error
}

// ArtifactGenerator renders the three service artifacts from fixed
// templates. Output depends only on the requirement's service name.
type ArtifactGenerator struct {
	store  ArtifactStore
	logger logger.Logger
}

func NewArtifactGenerator(store ArtifactStore, log logger.Logger) *ArtifactGenerator {
	return &ArtifactGenerator{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "artifact_generator"}),
	}
}

// Generate renders the controller, model and service artifacts and hands
// each to the store under its derived file name.
func (g *ArtifactGenerator) Generate(ctx context.Context, req *BuildRequirement) (*GeneratedArtifacts, error) {
	slug := Slugify(req.ServiceName)
	ident := identifier(req.ServiceName)

	artifacts := &GeneratedArtifacts{
		Controller: fmt.Sprintf(controllerTemplate, req.ServiceName, ident),
		Model:      fmt.Sprintf(modelTemplate, req.ServiceName, ident),
		Service:    fmt.Sprintf(serviceTemplate, req.ServiceName, ident),
	}

	writes := []struct {
		name    string
		content string
	}{
		{slug + "_controller.go", artifacts.Controller},
		{slug + "_model.go", artifacts.Model},
		{slug + "_service.go", artifacts.Service},
	}
	for _, w := range writes {
		if err := g.store.Write(ctx, w.name, w.content); err != nil {
			return nil, stderrors.NewArtifactWriteFailedError(w.name, err)
		}
		g.logger.Debug("artifact written", map[string]interface{}{
			"name": w.name,
			"size": len(w.content),
		})
	}

	return artifacts, nil
}

// Slugify lowercases name and collapses every non-alphanumeric run into a
// single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// identifier renders name as an exported Go identifier.
func identifier(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

const controllerTemplate = `// Controller for the %[1]s service.
//
// Request handling stays efficient: handlers validate input, delegate to the
// service layer and translate results back to the caller. Handlers are
// reliable under retry and safe to register more than once.

type %[2]sController struct {
	service *%[2]sService
}

func New%[2]sController(service *%[2]sService) *%[2]sController {
	return &%[2]sController{service: service}
}

func (c *%[2]sController) HandleRequest(ctx context.Context, payload []byte) ([]byte, error) {
	return c.service.Process(ctx, payload)
}
`

const modelTemplate = `// Model types for the %[1]s service.
//
// Records stay small and maintainable, and every change lands with matching
// documentation so the payload shape is never a surprise.

type %[2]sRecord struct {
	ID        string
	CreatedAt time.Time
	Payload   map[string]interface{}
}

func (r *%[2]sRecord) Validate() error {
	if r.ID == "" {
		return errors.New("missing record id")
	}
	return nil
}
`

const serviceTemplate = `// Service layer for the %[1]s service.
//
// Process automation lives here: the service receives a payload, applies the
// business rules and emits the outcome. Blocking calls accept a context so
// shutdown stays orderly.

type %[2]sService struct {
	store Store
}

func New%[2]sService(store Store) *%[2]sService {
	return &%[2]sService{store: store}
}

func (s *%[2]sService) Process(ctx context.Context, payload []byte) ([]byte, error) {
	record, err := decodeRecord(payload)
	if err != nil {
		return nil, err
	}
	return s.store.Save(ctx, record)
}
`

// RedisArtifactStore keeps generated artifacts in Redis under a stable key
// prefix so they can be inspected after a build.
type RedisArtifactStore struct {
	client *database.RedisClient
	ttl    time.Duration
}

func NewRedisArtifactStore(client *database.RedisClient, ttl time.Duration) *RedisArtifactStore {
	return &RedisArtifactStore{client: client, ttl: ttl}
}

func (s *RedisArtifactStore) Write(ctx context.Context, name, content string) error {
	return s.client.Set(ctx, "artifact:"+name, content, s.ttl)
}
