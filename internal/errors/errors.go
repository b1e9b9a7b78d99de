package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewOrderNotFoundError indicates the order number does not exist in the backend.
func NewOrderNotFoundError(orderNumber string) *AppError {
	return &AppError{
		Code:        "E101",
		Message:     fmt.Sprintf("order %s not found", orderNumber),
		UserMessage: "La orden no ha sido encontrada. Por favor, ingresa nuevamente el número de orden.",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewAlreadyClaimedError indicates the idempotency guard tripped: the order
// already carries claim metadata filed through the bot.
func NewAlreadyClaimedError(orderNumber string) *AppError {
	return &AppError{
		Code:        "E102",
		Message:     fmt.Sprintf("order %s already carries a payment claim", orderNumber),
		UserMessage: "No es posible actualizar la transacción a través del bot. Por favor, contáctanos en https://kiris.store para resolver tu problema. Puedes corregir tu número de orden a continuación.",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewInvalidOrderStateError indicates the order status does not admit a new claim.
func NewInvalidOrderStateError(orderNumber, status string) *AppError {
	return &AppError{
		Code:        "E103",
		Message:     fmt.Sprintf("order %s is %s, expected pending", orderNumber, status),
		UserMessage: fmt.Sprintf("La orden ya fue actualizada, estado de la orden: %s.", status),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewRateUnavailableError indicates the COP/USD reference rate could not be fetched or parsed.
func NewRateUnavailableError(cause error) *AppError {
	return &AppError{
		Code:        "E201",
		Message:     "reference rate unavailable",
		UserMessage: "No pudimos obtener la tasa de cambio en este momento. Inténtalo de nuevo en unos minutos.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewGatewayWriteError indicates the order backend rejected or lost a write.
func NewGatewayWriteError(cause error) *AppError {
	return &AppError{
		Code:        "E202",
		Message:     "order backend write failed",
		UserMessage: "Hubo un problema al actualizar la orden.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewVerifierError indicates a blockchain explorer call failed or returned
// an unusable response. The claim stays pending and is retried next sweep.
func NewVerifierError(network string, cause error) *AppError {
	return &AppError{
		Code:        "E301",
		Message:     fmt.Sprintf("chain verifier %s unreachable", network),
		UserMessage: "",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("database error: %s", underlyingMsg),
		UserMessage: "Problema temporal, inténtalo de nuevo más tarde.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

func NewExternalAPIError(apiName string, cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     fmt.Sprintf("external API error: %s", apiName),
		UserMessage: "El servicio no está disponible temporalmente.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

func NewStateError(msg string) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     msg,
		UserMessage: "La operación no es posible en el estado actual.",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       nil,
	}
}

func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     fmt.Sprintf("rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("Demasiadas solicitudes. Inténtalo en %d segundos.", retryAfter),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}
