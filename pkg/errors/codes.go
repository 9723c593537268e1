package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeOK                 ErrorCode = "OK"
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeInvalidParam       ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeTimeout            ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_007"
)

// Estimation pipeline error codes
const (
	ErrCodeConfig           ErrorCode = "EST_001" // configuration load/validation failure
	ErrCodeInference        ErrorCode = "EST_002" // external generation service failure
	ErrCodeDatasetRead      ErrorCode = "EST_003" // input parquet read failure
	ErrCodeDatasetWrite     ErrorCode = "EST_004" // output parquet write failure
	ErrCodeCacheError       ErrorCode = "EST_005" // response cache failure (non-fatal at call sites)
	ErrCodeStorageError     ErrorCode = "EST_006" // artifact upload failure
	ErrCodeColumnNotFound   ErrorCode = "EST_007" // named column absent from input file
	ErrCodeInvalidBatchSize ErrorCode = "EST_008" // batch size below 1
)

//Personal.AI order the ending
