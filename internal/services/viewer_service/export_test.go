package services

import "time"

// RewindCompletion сдвигает старт анимации завершения в прошлое,
// чтобы тесты не ждали реального времени
func (v *ViewerSession) RewindCompletion(d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.completionStartedAt = v.completionStartedAt.Add(-d)
}
