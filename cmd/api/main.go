package main

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/cors"
	"github.com/sirupsen/logrus"

	"VidTube.com/cmd/api/router"
	"VidTube.com/config"
	jwt "VidTube.com/pkg"
	"VidTube.com/pkg/cache"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/locker"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/storage"
)

func Init() {
	config.Init()
	cfg := &config.ConfigInfo

	if err := storage.Init(cfg.Mongo.Uri, cfg.Mongo.Database); err != nil {
		logrus.Fatalf("failed to init the document store: %v", err)
	}
	if err := cache.InitRedis(cfg.Redis.Addr, cfg.Redis.Password); err != nil {
		logrus.Fatalf("failed to init redis: %v", err)
	}
	locker.Init(cache.RedisClient())

	amqpURL := fmt.Sprintf("amqp://%s:%s@%s/", cfg.RabbitMq.Username, cfg.RabbitMq.Password, cfg.RabbitMq.Addr)
	if err := mq.InitProducer(amqpURL); err != nil {
		// Repair and cascade events degrade to logs without a broker.
		logrus.Warnf("failed to init rabbitmq producer: %v", err)
	}
	if err := oss.InitMinio(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL); err != nil {
		logrus.Fatalf("failed to init minio: %v", err)
	}

	jwt.AccessTokenJwtInit(cfg.Jwt.Secret)
}

func main() {
	Init()
	r := server.New(
		server.WithHostPorts(config.ConfigInfo.Server.Addr),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(16*1024*1024*1024),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8870", "http://localhost:8888"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	r.Use(recovery.Recovery(recovery.WithRecoveryHandler(
		func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte) {
			hlog.SystemLogger().CtxErrorf(ctx, "[Recovery] err=%v\nstack=%s", err, stack)
			c.JSON(consts.StatusInternalServerError, map[string]interface{}{
				"status_code": errno.ServiceErrCode,
				"message":     fmt.Sprintf("[Recovery] err=%v", err),
				"success":     false,
			})
		})))

	router.Register(r)
	r.Spin()
}
