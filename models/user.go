// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID                     primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email                  string             `json:"email" bson:"email"`
	Password               string             `json:"password,omitempty" bson:"password"`
	FullName               string             `json:"fullName" bson:"fullName"`
	UserType               string             `json:"userType" bson:"userType"` // "user" or "admin"
	Bio                    string             `json:"bio,omitempty" bson:"bio,omitempty"`
	ProfilePic             string             `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	VirtualEarnings        float64            `json:"virtualEarnings" bson:"virtualEarnings"`
	IsMonetizationApproved bool               `json:"isMonetizationApproved" bson:"isMonetizationApproved"`
	PaymentDetails         *PaymentDetails    `json:"paymentDetails,omitempty" bson:"paymentDetails,omitempty"`
	FCMToken               string             `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	IsActive               bool               `json:"isActive" bson:"isActive"`
	CreatedAt              time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt              time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PaymentDetails holds the payout destination for a user. Exactly one
// variant is active at a time, selected by Method.
type PaymentDetails struct {
	Method  string `json:"method" bson:"method"` // "upi", "bank" or "paypal"
	Country string `json:"country,omitempty" bson:"country,omitempty"`

	// UPI
	UpiID string `json:"upiId,omitempty" bson:"upiId,omitempty"`

	// Bank transfer
	AccountHolder string `json:"accountHolder,omitempty" bson:"accountHolder,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty" bson:"accountNumber,omitempty"`
	BankName      string `json:"bankName,omitempty" bson:"bankName,omitempty"`
	IFSCCode      string `json:"ifscCode,omitempty" bson:"ifscCode,omitempty"`

	// PayPal
	PaypalEmail string `json:"paypalEmail,omitempty" bson:"paypalEmail,omitempty"`
}

// Complete reports whether every field required by the active variant is
// populated. Incomplete details block withdrawal requests.
func (p *PaymentDetails) Complete() bool {
	if p == nil {
		return false
	}
	switch p.Method {
	case "upi":
		return p.UpiID != ""
	case "bank":
		return p.AccountHolder != "" && p.AccountNumber != "" && p.BankName != "" && p.IFSCCode != ""
	case "paypal":
		return p.PaypalEmail != ""
	default:
		return false
	}
}

// UpdateProfileRequest model for profile updates
type UpdateProfileRequest struct {
	FullName string `json:"fullName,omitempty"`
	Bio      string `json:"bio,omitempty"`
	FCMToken string `json:"fcmToken,omitempty"`
}

// UpdatePaymentDetailsRequest model for changing the payout destination
type UpdatePaymentDetailsRequest struct {
	Method        string `json:"method" validate:"required,oneof=upi bank paypal"`
	Country       string `json:"country,omitempty"`
	UpiID         string `json:"upiId,omitempty"`
	AccountHolder string `json:"accountHolder,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	IFSCCode      string `json:"ifscCode,omitempty"`
	PaypalEmail   string `json:"paypalEmail,omitempty"`
}

// Response is the standard API envelope
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
