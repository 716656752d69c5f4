package util

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成一个标准的 UUID (v4)
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateShortUUID 生成一个不带中划线的短 UUID
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GeneratePrescriptionID 生成处方单据 ID，带 RX 前缀便于日志排查
func GeneratePrescriptionID() string {
	return "RX" + GenerateShortUUID()[:18]
}

// GenerateNotificationID 生成通知 ID，带 NT 前缀
func GenerateNotificationID() string {
	return "NT" + GenerateShortUUID()[:18]
}
