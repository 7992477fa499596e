package cors_test

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"

	"github.com/pathcors/cors"
)

func ExampleMiddleware_Wrap() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /hello", handleHello) // note: not covered by Paths

	// create CORS middleware
	corsMw, err := cors.NewMiddleware(cors.Config{
		Paths:          cors.Paths{Global: []string{"/api/*"}},
		AllowedOrigins: []string{"https://example.com"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization"},
	})
	if err != nil {
		log.Fatal(err)
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/users", handleUsersGet)
	api.HandleFunc("POST /api/users", handleUsersPost)
	api.HandleFunc("PUT /api/users", handleUsersPut)
	api.HandleFunc("DELETE /api/users", handleUsersDelete)
	mux.Handle("/api/", corsMw.Wrap(api)) // note: method-less pattern here

	log.Fatal(http.ListenAndServe(":8080", mux))
}

func ExampleMiddleware_Wrap_preflight() {
	corsMw, err := cors.NewMiddleware(cors.Config{
		Paths:               cors.Paths{Global: []string{"/api/*"}},
		AllowedOrigins:      []string{"https://a.example.com", "https://b.example.com"},
		AllowedMethods:      []string{"*"},
		SupportsCredentials: true,
		MaxAge:              new(int),
	})
	if err != nil {
		log.Fatal(err)
	}
	handler := corsMw.Wrap(http.HandlerFunc(handleUsersPut))

	req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	req.Header.Set("Origin", "https://b.example.com")
	req.Header.Set("Access-Control-Request-Method", "put")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	fmt.Println(rec.Code)
	for _, name := range []string{
		"Access-Control-Allow-Origin",
		"Access-Control-Allow-Credentials",
		"Access-Control-Allow-Methods",
		"Access-Control-Max-Age",
	} {
		fmt.Printf("%s: %s\n", name, rec.Header().Get(name))
	}
	// Output:
	// 204
	// Access-Control-Allow-Origin: https://b.example.com
	// Access-Control-Allow-Credentials: true
	// Access-Control-Allow-Methods: PUT
	// Access-Control-Max-Age: 0
}

func ExampleFromMap() {
	// Options typically come from a decoded configuration file.
	opts := map[string]any{
		"paths": []any{
			"api/*",
			map[string]any{"admin.example.com": []any{"admin/*"}},
		},
		"allowed_origins": []any{"https://*.example.com"},
		"allowed_methods": []any{"get", "post"},
		"max_age":         nil,
	}
	cfg, err := cors.FromMap(opts)
	if err != nil {
		log.Fatal(err)
	}
	mw, err := cors.NewMiddleware(cfg)
	if err != nil {
		log.Fatal(err)
	}
	normalized := mw.Config()
	fmt.Println(normalized.Paths)
	fmt.Println(normalized.AllowedMethods)
	fmt.Println(normalized.MaxAge == nil)
	// Output:
	// ["api/*" admin.example.com:["admin/*"]]
	// [GET POST]
	// true
}

func handleHello(w http.ResponseWriter, _ *http.Request) {
	io.WriteString(w, "Hello, World!")
}

func handleUsersGet(w http.ResponseWriter, _ *http.Request) {
	// omitted
}

func handleUsersPost(w http.ResponseWriter, _ *http.Request) {
	// omitted
}

func handleUsersPut(w http.ResponseWriter, _ *http.Request) {
	// omitted
}

func handleUsersDelete(w http.ResponseWriter, _ *http.Request) {
	// omitted
}
