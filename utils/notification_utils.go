package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/blogchain/mindly_backend/config"
	"github.com/blogchain/mindly_backend/models"
)

// SaveNotification saves an in-app notification
func SaveNotification(db *mongo.Database, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := db.Collection("notifications").InsertOne(context.Background(), notification)
	return err
}

// sendEmail delivers a plain-text email via the configured SMTP relay
func sendEmail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}
	if smtpHost == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}

// sendPush delivers an FCM push when the user has a registered token
func sendPush(fcmToken, title, body string) error {
	if fcmToken == "" || config.FirebaseApp == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return err
	}
	_, err = client.Send(ctx, &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	})
	return err
}

// NotifyWithdrawalStatusChange tells the requesting user their
// withdrawal moved. In-app, email and push are all best effort.
func NotifyWithdrawalStatusChange(db *mongo.Database, request *models.WithdrawalRequest) error {
	var user models.User
	err := db.Collection("users").FindOne(context.Background(), bson.M{"_id": request.UserID}).Decode(&user)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	title := "Withdrawal update"
	message := fmt.Sprintf("Your withdrawal request for %.2f is now %s.", request.Amount, request.Status)
	if request.Status == models.WithdrawalStatusRejected && request.AdminNote != "" {
		message = fmt.Sprintf("Your withdrawal request for %.2f was rejected: %s", request.Amount, request.AdminNote)
	}

	if err := SaveNotification(db, user.ID, title, message, "withdrawal_update", map[string]interface{}{
		"withdrawalId": request.ID.Hex(),
		"status":       request.Status,
	}); err != nil {
		log.Printf("Failed to save withdrawal notification: %v", err)
	}

	if err := sendEmail(user.Email, title, fmt.Sprintf("Dear %s,\n\n%s\n\nBest regards,\nThe Mindly Team", user.FullName, message)); err != nil {
		log.Printf("Failed to email withdrawal notification: %v", err)
	}

	if err := sendPush(user.FCMToken, title, message); err != nil {
		log.Printf("Failed to push withdrawal notification: %v", err)
	}
	return nil
}

// NotifyMonetizationApproved tells an author their views now earn
func NotifyMonetizationApproved(db *mongo.Database, userID primitive.ObjectID) {
	var user models.User
	err := db.Collection("users").FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		log.Printf("Failed to find user for monetization notification: %v", err)
		return
	}

	title := "Monetization approved"
	message := "Your account is now monetized. Views on your published posts will earn from here on."

	if err := SaveNotification(db, userID, title, message, "monetization_approved", nil); err != nil {
		log.Printf("Failed to save monetization notification: %v", err)
	}
	if err := sendEmail(user.Email, title, fmt.Sprintf("Dear %s,\n\n%s\n\nBest regards,\nThe Mindly Team", user.FullName, message)); err != nil {
		log.Printf("Failed to email monetization notification: %v", err)
	}
	if err := sendPush(user.FCMToken, title, message); err != nil {
		log.Printf("Failed to push monetization notification: %v", err)
	}
}
