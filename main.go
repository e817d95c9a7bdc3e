package main

import (
	"context"
	"log"
	"net/http"

	"approvalflow/account"
	"approvalflow/bizerror"
	"approvalflow/domain"
	"approvalflow/es"
	"approvalflow/event"
	"approvalflow/indices"
	"approvalflow/infra/tracing"
	"approvalflow/persistence"
	"approvalflow/servehttp"
	"approvalflow/session"
	"approvalflow/sessions"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	tracingCloser := tracing.Bootstrap()
	defer tracingCloser.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(context.Background()).AutoMigrate(
		&account.User{}, &domain.ChainTemplate{}, &domain.ChainLevel{},
		&domain.ApprovalRequest{}, &event.EventRecord{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}
	if err := account.BootstrapAdmin(ds.GormDB(context.Background())); err != nil {
		log.Fatalf("admin bootstrap failed %v\n", err)
	}

	es.ActiveESClient = es.CreateClientFromEnv()
	event.EventHandlers = append(event.EventHandlers, indices.IndexApprovalEventHandle)

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "approvalflow")
	})

	sessions.RegisterSessionsRestAPI(engine)
	sessions.RegisterSessionRestAPI(engine, session.SimpleAuthFilter())
	account.RegisterUsersRestAPI(engine, session.SimpleAuthFilter())
	servehttp.RegisterChainTemplatesRestAPI(engine, session.SimpleAuthFilter())
	servehttp.RegisterApprovalsRestAPI(engine, session.SimpleAuthFilter())
	indices.RegisterIndicesRestAPI(engine, session.SimpleAuthFilter())

	servehttp.StartHTTPServer(engine)
}
