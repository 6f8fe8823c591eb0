package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"FoodBridge/server/internal/appMiddleware"
	"FoodBridge/server/internal/db"
	"FoodBridge/server/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	db.InitDB()
	defer db.Close()

	r := chi.NewRouter()

	r.Use(appMiddleware.CorsMiddleware)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login-ngo", handlers.LoginNGO)
		r.Post("/auth/login-restaurant", handlers.LoginRestaurant)
		r.Post("/auth/register-ngo", handlers.RegisterNGO)
		r.Post("/auth/register-restaurant", handlers.RegisterRestaurant)
		r.Post("/auth/google-auth", handlers.GoogleAuth)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.AuthMiddleware)

			r.Post("/auth/update-location", handlers.UpdateLocation)
			r.Get("/auth/ngos", handlers.ListNGOs)
			r.Get("/auth/restaurants", handlers.ListRestaurants)

			r.Post("/donations/create", handlers.CreateDonation)
			r.Get("/donations/available", handlers.AvailableDonations)
			r.Get("/donations/my-requests", handlers.MyRequests)
			r.Get("/donations/requests", handlers.IncomingRequests)
			r.Post("/donations/request/{id}", handlers.RequestDonation)
			r.Post("/donations/accept/{id}", handlers.AcceptDonation)
			r.Post("/donations/reject/{id}", handlers.RejectDonation)
			r.Post("/donations/complete/{id}", handlers.CompleteDonation)
			r.Post("/donations/{id}/rate", handlers.RateDonation)
			r.Get("/donations/history/restaurant", handlers.RestaurantHistory)
			r.Get("/donations/history/ngo", handlers.NGOHistory)
			r.Get("/donations/restaurant/{id}/reviews", handlers.RestaurantReviews)

			r.Get("/chats/my-chats", handlers.MyChats)
			r.Get("/chats/{id}", handlers.GetChat)
			r.Post("/chats/{id}/message", handlers.SendMessage)
			r.Post("/chats/{id}/mark-read", handlers.MarkChatRead)
		})
	})

	r.Get("/ws", handlers.WebSocketHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5001"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server started on port :%s\n", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %s\n", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Println("Stopping the server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %s\n", err)
	}
	log.Println("Server has been successfully stopped")
}
