package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"learnhub/config"
)

type chargeResponse struct {
	Status   string `json:"status"`
	ChargeID string `json:"charge_id"`
	Message  string `json:"message"`
}

// ChargeCourse collects a course payment through the gateway and returns the
// local order reference plus the gateway charge id. The request carries a
// fixed 10 second timeout; callers get a single error classification and
// never retry automatically.
func ChargeCourse(studentEmail, courseName string, amount float64) (string, string, error) {
	reference := uuid.NewString()

	client := resty.New().
		SetBaseURL(config.AppConfig.PaymentApiURL).
		SetTimeout(10 * time.Second).
		SetHeader("x-api-key", config.AppConfig.PaymentApiKey)

	var result chargeResponse
	resp, err := client.R().
		SetBody(map[string]interface{}{
			"reference":   reference,
			"email":       studentEmail,
			"description": "Course enrollment: " + courseName,
			"amount":      amount,
			"currency":    "USD",
		}).
		SetResult(&result).
		Post("/charges")
	if err != nil {
		log.Printf("Payment gateway call failed for %s: %v", reference, err)
		return reference, "", fmt.Errorf("payment gateway unreachable")
	}
	if resp.StatusCode() != 200 || result.Status != "succeeded" {
		log.Printf("Payment declined for %s: %d %s", reference, resp.StatusCode(), result.Message)
		return reference, result.ChargeID, fmt.Errorf("payment declined")
	}

	return reference, result.ChargeID, nil
}
