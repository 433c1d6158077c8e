package bootstrap

import (
	"context"
	"log"

	"github.com/seed-hypermedia/mintter-sub004/internal/config"
	"github.com/seed-hypermedia/mintter-sub004/internal/controller"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/logger"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/memory"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/unitofwork"
	"github.com/seed-hypermedia/mintter-sub004/internal/service"
	"github.com/seed-hypermedia/mintter-sub004/internal/websocket"
	"github.com/seed-hypermedia/mintter-sub004/pkg/events"
	pktNats "github.com/seed-hypermedia/mintter-sub004/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	CodecController    controller.ICodecController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	LiveService     service.ILiveService
	NatsSubscriber  *pktNats.Subscriber

	WebSocketHub *websocket.Hub
	Logger       logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	documentCache := memory.NewDocumentCache(cfg.Codec.DocumentCacheTTL)

	// 2. In-process job queue
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Infrastructure
	var eventPublisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.NatsSubscriber = natsSub
		c.closers = append(c.closers, natsSub.Close)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (live channel stays local)", err)
		rdb.Close()
		rdb = nil
	} else {
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.LiveLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run(ctx)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Codec.RenderTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Codec.RenderTopic,
		uowFactory,
		sysLogger,
	)

	codecService := service.NewCodecService()
	documentService := service.NewDocumentService(
		uowFactory,
		documentCache,
		publisherService,
		eventPublisher,
		sysLogger,
		service.DocumentServiceOptions{
			MaxDocumentBytes: cfg.Codec.MaxDocumentBytes,
			DefaultPageLimit: cfg.Codec.DefaultPageLimit,
		},
	)
	liveService := service.NewLiveService(uowFactory, wsHub, wsLogger)

	// 5. Controllers
	c.CodecController = controller.NewCodecController(codecService)
	c.DocumentController = controller.NewDocumentController(documentService, wsHub, wsLogger)
	c.ConsumerService = consumerService
	c.LiveService = liveService
	c.WebSocketHub = wsHub

	return c
}

// StartLiveEvents forwards document bus events to websocket subscribers.
func (c *Container) StartLiveEvents(ctx context.Context, durable string) error {
	if c.NatsSubscriber == nil {
		return nil
	}
	return c.NatsSubscriber.Subscribe(ctx, pktNats.SubjectPrefix+">", durable, c.LiveService.HandleEvent)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.Logger.Sync()
}
