package service

import (
	"errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/config"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/optimizer"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/repository"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/sse"
)

// Service-level sentinel errors.
var (
	// ErrReferenced blocks a deletion: the entity is still referenced
	// elsewhere, and cleanup is explicit rather than cascading.
	ErrReferenced = errors.New("entity is referenced and cannot be deleted")
	ErrNotInModel = errors.New("entity not found in model")
)

// Services is the collection wired at startup.
type Services struct {
	Project    *ProjectService
	Model      *ModelService
	Timeline   *TimelineService
	Generation *GenerationService
}

// NewServices creates the service collection.
func NewServices(repos *repository.Repositories, rdb *redis.Client, hub *sse.Hub, cfg *config.Config, log *zap.Logger) (*Services, error) {
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			log.Warn("minio unavailable, snapshot archive disabled", zap.Error(err))
			minioClient = nil
		}
	}
	snapshots := repository.NewSnapshotStore(minioClient, cfg.MinIO.Bucket)

	projectSvc := NewProjectService(repos.Project, snapshots, log)
	timelineSvc, err := NewTimelineService(projectSvc, cfg.Resolver.CacheSize, log)
	if err != nil {
		return nil, err
	}
	optimizerClient := optimizer.NewClient(cfg.Optimizer.BaseURL, cfg.Optimizer.RetryDelay, log)

	return &Services{
		Project:    projectSvc,
		Model:      NewModelService(projectSvc, log),
		Timeline:   timelineSvc,
		Generation: NewGenerationService(projectSvc, optimizerClient, hub, rdb, log),
	}, nil
}
