package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"foreverhome/internal/config"
	"foreverhome/internal/db"
	"foreverhome/internal/logging"
	"foreverhome/internal/model"
	"foreverhome/internal/repository"
	"foreverhome/internal/service"
	"foreverhome/internal/store"
)

var demoPets = []store.Document{
	{"name": "Biscuit", "category": "dog", "age": 3, "location": "Dhaka", "adopted": false},
	{"name": "Mochi", "category": "cat", "age": 1, "location": "Chattogram", "adopted": false},
	{"name": "Pepper", "category": "rabbit", "age": 2, "location": "Sylhet", "adopted": false},
}

func main() {
	adminEmail := flag.String("admin", "", "email of the user to register and promote to admin")
	withPets := flag.Bool("pets", false, "insert demo pets owned by the admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if *adminEmail == "" {
		logger.Fatal("-admin is required")
	}

	ctx := context.Background()
	docStore, err := db.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("store init", zap.Error(err))
	}
	defer docStore.Close(ctx) //nolint:errcheck

	users := service.NewUserService(repository.NewUserRepository(docStore))
	res, err := users.Register(ctx, store.Document{model.FieldEmail: *adminEmail, "name": "Administrator"})
	if err != nil {
		logger.Fatal("register admin", zap.Error(err))
	}
	logger.Info("admin user", zap.String("email", *adminEmail), zap.Bool("created", res.Created))

	// Registration always creates members; promotion is a direct store write.
	promoted, err := docStore.Collection(model.CollectionUsers).UpdateOne(ctx,
		store.ByField(model.FieldEmail, *adminEmail),
		store.Document{model.FieldRole: model.RoleAdmin.String()})
	if err != nil {
		logger.Fatal("promote admin", zap.Error(err))
	}
	logger.Info("admin role set", zap.Int64("modified", promoted.ModifiedCount))

	if !*withPets {
		return
	}
	pets := service.NewRecordService(repository.NewRecordRepository(docStore, model.CollectionPets))
	for _, pet := range demoPets {
		doc := store.Document{model.FieldEmail: *adminEmail}
		for k, v := range pet {
			doc[k] = v
		}
		inserted, err := pets.Create(ctx, doc)
		if err != nil {
			logger.Fatal("insert pet", zap.Any("pet", pet["name"]), zap.Error(err))
		}
		logger.Info("inserted pet", zap.Any("name", pet["name"]), zap.String("id", inserted.InsertedID))
	}
}
