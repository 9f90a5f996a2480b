package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/satyalearn/satyarag/rag"
	"github.com/satyalearn/satyarag/rag/engine"
	"github.com/satyalearn/satyarag/rag/interfaces"
)

type queryRequest struct {
	Question   string `json:"question"`
	Subject    string `json:"subject"`
	Grade      string `json:"grade"`
	MaxResults int    `json:"max_results"`
}

// documentSeeder is implemented by stores that accept pre-chunked
// documents over the API.
type documentSeeder interface {
	AddDocuments(ctx context.Context, collection string, docs []engine.SeedDocument) error
}

func startAPI(listenAddress string, orchestrator *rag.Orchestrator, store interfaces.VectorStore) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.POST("/api/query", query(orchestrator))
	e.POST("/api/query/stream", queryStream(orchestrator))

	e.GET("/api/cache/stats", cacheStats(orchestrator))
	e.POST("/api/cache/clear", cacheClear(orchestrator))

	e.GET("/api/collections", listCollections(store))
	e.POST("/api/collections/:name/documents", seedDocuments(store))

	e.Logger.Fatal(e.Start(listenAddress))
}

func query(orchestrator *rag.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := new(queryRequest)
		if err := c.Bind(r); err != nil {
			return c.JSON(http.StatusBadRequest, errorMessage("Invalid request"))
		}

		result := orchestrator.Query(c.Request().Context(), r.Question, r.Subject, r.Grade, r.MaxResults)
		return c.JSON(http.StatusOK, result)
	}
}

// queryStream streams answer tokens over SSE. Each token is a data
// event; the final event named "result" carries the full QueryResult.
func queryStream(orchestrator *rag.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := new(queryRequest)
		if err := c.Bind(r); err != nil {
			return c.JSON(http.StatusBadRequest, errorMessage("Invalid request"))
		}

		resp := c.Response()
		resp.Header().Set(echo.HeaderContentType, "text/event-stream")
		resp.Header().Set("Cache-Control", "no-cache")
		resp.Header().Set("Connection", "keep-alive")
		resp.WriteHeader(http.StatusOK)

		for chunk := range orchestrator.QueryStream(c.Request().Context(), r.Question, r.Subject, r.Grade, r.MaxResults) {
			if chunk.Done {
				payload, err := json.Marshal(chunk.Result)
				if err != nil {
					return err
				}
				fmt.Fprintf(resp, "event: result\ndata: %s\n\n", payload)
			} else {
				payload, err := json.Marshal(chunk.Delta)
				if err != nil {
					return err
				}
				fmt.Fprintf(resp, "data: %s\n\n", payload)
			}
			resp.Flush()
		}
		return nil
	}
}

func cacheStats(orchestrator *rag.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, orchestrator.Cache().Stats())
	}
}

func cacheClear(orchestrator *rag.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		orchestrator.Cache().Clear()
		return c.JSON(http.StatusOK, orchestrator.Cache().Stats())
	}
}

func listCollections(store interfaces.VectorStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		names, err := store.ListCollections(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, errorMessage("Failed to list collections"))
		}
		return c.JSON(http.StatusOK, names)
	}
}

func seedDocuments(store interfaces.VectorStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		seeder, ok := store.(documentSeeder)
		if !ok {
			return c.JSON(http.StatusNotImplemented, errorMessage("This store does not accept documents over the API"))
		}

		type request struct {
			Documents []engine.SeedDocument `json:"documents"`
		}

		r := new(request)
		if err := c.Bind(r); err != nil {
			return c.JSON(http.StatusBadRequest, errorMessage("Invalid request"))
		}

		if err := seeder.AddDocuments(c.Request().Context(), c.Param("name"), r.Documents); err != nil {
			return c.JSON(http.StatusInternalServerError, errorMessage("Failed to store documents: "+err.Error()))
		}
		return c.JSON(http.StatusCreated, map[string]int{"stored": len(r.Documents)})
	}
}

func errorMessage(message string) map[string]string {
	return map[string]string{"error": message}
}
