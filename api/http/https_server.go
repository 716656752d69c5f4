package http

import (
	"MediLink/internal/config"
	"MediLink/internal/initial"
	jwtMiddleware "MediLink/internal/middleware/jwt"
	notifService "MediLink/internal/modules/notification/application/service"
	"MediLink/internal/modules/notification/infrastructure/channel"
	notifPersistence "MediLink/internal/modules/notification/infrastructure/persistence"
	notifQueue "MediLink/internal/modules/notification/infrastructure/queue"
	notifHandler "MediLink/internal/modules/notification/interface/http"
	rxService "MediLink/internal/modules/prescription/application/service"
	"MediLink/internal/modules/prescription/infrastructure/mq"
	"MediLink/internal/modules/prescription/infrastructure/mq/kafka"
	rxPersistence "MediLink/internal/modules/prescription/infrastructure/persistence"
	rxQueue "MediLink/internal/modules/prescription/infrastructure/queue"
	rxHandler "MediLink/internal/modules/prescription/interface/http"
	"MediLink/internal/modules/prescription/interface/scheduler"
	"MediLink/pkg/broadcast"
	"MediLink/pkg/ssl"
	"MediLink/pkg/ws"
	"MediLink/pkg/zlog"

	"context"
	"time"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	GE *gin.Engine

	// 随进程启停的后台组件，main 负责 Start/Stop
	NotifyDispatcher *notifQueue.Dispatcher
	Relay            *rxQueue.OutboxRelay
	Scheduler        *scheduler.SchedulerManager
	KafkaPublisher   mq.Publisher
)

func init() {
	conf := config.GetConfig()

	GE = gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	GE.Use(cors.New(corsConfig))
	GE.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))

	// 两个 Hub：通知按用户维度推送，订阅按处方维度推送
	notifyHub := ws.NewHub()
	subscribeHub := ws.NewHub()
	broadcaster := broadcast.NewBroadcasterWith(
		conf.TrackingConfig.BroadcastBufferSize,
		time.Duration(conf.TrackingConfig.BroadcastTimeoutMillis)*time.Millisecond,
	)

	rxRepo := rxPersistence.NewPrescriptionRepository(initial.GormDB)
	logRepo := rxPersistence.NewTransitionLogRepository(initial.GormDB)
	eventRepo := rxPersistence.NewPrescriptionEventRepository(initial.GormDB)
	uow := rxPersistence.NewTrackingUnitOfWork(initial.GormDB)
	notifRepo := notifPersistence.NewNotificationRepository(initial.GormDB)
	prefRepo := notifPersistence.NewPreferenceRepository(initial.GormDB)

	// Kafka 连不上时降级运行：outbox 事件留在表里等中继恢复
	if len(conf.KafkaConfig.Brokers) > 0 {
		pub, err := kafka.NewSaramaPublisher(kafka.PublisherConfig{
			Brokers:     conf.KafkaConfig.Brokers,
			ClientID:    conf.KafkaConfig.ClientID,
			RetryMax:    conf.KafkaConfig.ProducerRetryMax,
			SendTimeout: time.Duration(conf.KafkaConfig.ProducerTimeoutMillis) * time.Millisecond,
		})
		if err != nil {
			zlog.Error("Kafka 连接失败，事件发布降级: " + err.Error())
		} else {
			KafkaPublisher = pub
		}
	}

	// 通知渠道。邮箱 / 手机号解析接入用户资料服务，未接入前渠道静默跳过
	var emptyResolver channel.AddressResolver = func(ctx context.Context, userID string) (string, error) {
		return "", nil
	}
	senders := []channel.Sender{
		channel.NewInAppSender(notifyHub),
		channel.NewEmailSender(
			conf.NotifyConfig.SmtpHost,
			conf.NotifyConfig.SmtpPort,
			conf.NotifyConfig.SmtpUsername,
			conf.NotifyConfig.SmtpPassword,
			conf.NotifyConfig.SmtpFrom,
			emptyResolver,
		),
		channel.NewSmsSender(conf.NotifyConfig.SmsGatewayURL, conf.NotifyConfig.SmsGatewayToken, emptyResolver),
	}
	if KafkaPublisher != nil {
		senders = append(senders, channel.NewPushSender(KafkaPublisher, conf.KafkaConfig.PushTopic))
	}

	notifySvc := notifService.NewNotifyService(notifRepo, prefRepo, senders)
	NotifyDispatcher = notifQueue.NewDispatcher(notifySvc, conf.NotifyConfig.WorkerCount, conf.NotifyConfig.QueueSize)

	transitionSvc := rxService.NewTransitionService(rxRepo, uow, NotifyDispatcher, broadcaster)
	timelineSvc := rxService.NewTimelineService(rxRepo, logRepo)
	progressSvc := rxService.NewProgressService(rxRepo, logRepo, rxService.RemainingFromConfig(conf))
	prescriptionSvc := rxService.NewPrescriptionService(rxRepo)
	notificationSvc := notifService.NewNotificationService(notifRepo, prefRepo)

	if KafkaPublisher != nil {
		Relay = rxQueue.NewOutboxRelay(
			eventRepo,
			KafkaPublisher,
			conf.KafkaConfig.TransitionTopic,
			conf.TrackingConfig.OutboxBatchSize,
			time.Duration(conf.TrackingConfig.OutboxPollIntervalMillis)*time.Millisecond,
		)
	}
	Scheduler = scheduler.NewSchedulerManager(
		transitionSvc,
		notifRepo,
		conf.TrackingConfig.ExpireAfterHours,
		conf.TrackingConfig.ExpireSweepCron,
	)

	rxH := rxHandler.NewPrescriptionHandler(prescriptionSvc, transitionSvc, timelineSvc, progressSvc)
	rxWsH := rxHandler.NewWsHandler(subscribeHub, broadcaster, rxRepo)
	notifH := notifHandler.NewNotificationHandler(notificationSvc)
	notifWsH := notifHandler.NewWsHandler(notifyHub)

	// WebSocket 握手自带 Token 校验，不挂 JWT 中间件
	GE.GET("/wss", rxWsH.Subscribe)
	GE.GET("/wss/notifications", notifWsH.Connect)

	authed := GE.Group("/")
	authed.Use(jwtMiddleware.Auth())
	authed.POST("/prescription/createPrescription", rxH.CreatePrescription)
	authed.POST("/prescription/getPrescription", rxH.GetPrescription)
	authed.POST("/prescription/listPrescriptions", rxH.ListPrescriptions)
	authed.POST("/prescription/updateStatus", rxH.UpdateStatus)
	authed.POST("/prescription/getTimeline", rxH.GetTimeline)
	authed.POST("/prescription/getProgress", rxH.GetProgress)
	authed.POST("/notification/listNotifications", notifH.ListNotifications)
	authed.POST("/notification/markRead", notifH.MarkRead)
	authed.POST("/notification/markAllRead", notifH.MarkAllRead)
	authed.POST("/notification/unreadCount", notifH.UnreadCount)
	authed.POST("/notification/getPreferences", notifH.GetPreferences)
	authed.POST("/notification/updatePreferences", notifH.UpdatePreferences)
}
