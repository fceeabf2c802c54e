package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"workmarket/infrastructure"
	"workmarket/interfaces"
	"workmarket/services"
)

func main() {
	// Load .env
	_ = godotenv.Load()

	// Connect DB
	db := infrastructure.NewMySQLConnection()

	// Connect RabbitMQ
	rmq := infrastructure.NewRabbitMQ()

	notifications := services.NewNotificationService(db)

	// Worker consumer → offer events become notification rows
	rmq.ConsumeOfferEvents(func(ev infrastructure.OfferEvent) {
		logrus.WithFields(logrus.Fields{
			"kind":     ev.Kind,
			"job_id":   ev.JobID,
			"offer_id": ev.OfferID,
		}).Info("processing offer event")
		notifications.HandleOfferEvent(ev)
	})

	// Setup Gin router
	router := gin.Default()
	interfaces.NewHTTPHandler(router, &interfaces.HTTPHandler{
		Users:         services.NewUserService(db),
		Jobs:          services.NewJobService(db),
		Offers:        services.NewOfferService(db, rmq),
		Chats:         services.NewChatService(db),
		Portfolio:     services.NewPortfolioService(db),
		Notifications: notifications,
	})

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logrus.Infof("🚀 Server running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		logrus.Fatal(err)
	}
}
