package controllers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestSignupInsertFailureMapsDuplicateEmailToConflict(t *testing.T) {
	// The shape the driver returns when the unique email index rejects
	// the insert.
	dup := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}

	status, resp := signupInsertFailure(dup)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "An account with this email already exists", resp.Message)
}

func TestSignupInsertFailureKeepsOtherErrorsInternal(t *testing.T) {
	status, resp := signupInsertFailure(errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to create account", resp.Message)
}
