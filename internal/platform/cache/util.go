package cache

import (
	"time"
)

// TimeUntilNextDay は市場タイムゾーンにおける次の日付変更（0時）までの期間を返します。
// loc が nil の場合は UTC を使用します。
func TimeUntilNextDay(now time.Time, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	// 翌日の0時を計算（AddDateを使うことで夏時間の切り替え日も正しく扱う）
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)

	return midnight.Sub(local)
}
