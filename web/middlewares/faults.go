package middlewares

import (
	"net/http"
	"sync"
	"time"

	"axiapac.com/selfservice/web/common"
	"github.com/gin-gonic/gin"
)

type fault struct {
	status int
	stall  time.Duration
}

// Faults injects failures into the next requests, in order.
type Faults struct {
	mu    sync.Mutex
	queue []fault
}

// FailNext makes the next n requests answer with status.
func (f *Faults) FailNext(n, status int) {
	f.push(n, fault{status: status})
}

// StallNext holds the next n requests for d before handling them normally.
// A stalled request ends early when the client goes away.
func (f *Faults) StallNext(n int, d time.Duration) {
	f.push(n, fault{stall: d})
}

func (f *Faults) push(n int, ft fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.queue = append(f.queue, ft)
	}
}

func (f *Faults) next() (fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return fault{}, false
	}
	ft := f.queue[0]
	f.queue = f.queue[1:]
	return ft, true
}

func (f *Faults) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ft, ok := f.next()
		if !ok {
			c.Next()
			return
		}
		if ft.stall > 0 {
			timer := time.NewTimer(ft.stall)
			select {
			case <-c.Request.Context().Done():
				timer.Stop()
				c.Abort()
				return
			case <-timer.C:
			}
		}
		if ft.status != 0 {
			if ft.status >= http.StatusInternalServerError {
				c.AbortWithStatusJSON(ft.status, common.NewErrorResponse("Injected failure"))
			} else {
				c.AbortWithStatus(ft.status)
			}
			return
		}
		c.Next()
	}
}
