package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"colstore.io/server/pkg/cluster"
	"colstore.io/server/pkg/meta"
	"colstore.io/server/pkg/rule"
	"colstore.io/server/pkg/util"
	"github.com/labstack/echo"
)

const (
	succeed = 0
	failed  = 1
)

func (s *Server) rules() func(ctx echo.Context) error {
	return func(ctx echo.Context) error {
		data, err := s.store.Rules(ctx.Param("datasource"))
		if err != nil {
			return ctx.JSON(http.StatusOK, &meta.JSONResult{
				Code:  failed,
				Value: err.Error(),
			})
		}
		if data == nil {
			return ctx.NoContent(http.StatusNotFound)
		}

		return ctx.JSON(http.StatusOK, &meta.JSONResult{
			Value: json.RawMessage(data),
		})
	}
}

func (s *Server) putRules() func(ctx echo.Context) error {
	return func(ctx echo.Context) error {
		data, err := ioutil.ReadAll(ctx.Request().Body)
		if err != nil {
			return ctx.NoContent(http.StatusBadRequest)
		}

		// reject a chain the coordinator could not apply
		if _, err := rule.ParseRules(data); err != nil {
			return ctx.JSON(http.StatusBadRequest, &meta.JSONResult{
				Code:  failed,
				Value: err.Error(),
			})
		}

		err = s.store.PutRules(ctx.Param("datasource"), data)
		if err != nil {
			return ctx.JSON(http.StatusOK, &meta.JSONResult{
				Code:  failed,
				Value: err.Error(),
			})
		}

		return ctx.JSON(http.StatusOK, &meta.JSONResult{})
	}
}

func (s *Server) defaultRules() func(ctx echo.Context) error {
	return func(ctx echo.Context) error {
		data, err := s.store.DefaultRules()
		if err != nil {
			return ctx.JSON(http.StatusOK, &meta.JSONResult{
				Code:  failed,
				Value: err.Error(),
			})
		}
		if data == nil {
			return ctx.NoContent(http.StatusNotFound)
		}

		return ctx.JSON(http.StatusOK, &meta.JSONResult{
			Value: json.RawMessage(data),
		})
	}
}

func (s *Server) putDefaultRules() func(ctx echo.Context) error {
	return func(ctx echo.Context) error {
		data, err := ioutil.ReadAll(ctx.Request().Body)
		if err != nil {
			return ctx.NoContent(http.StatusBadRequest)
		}

		if _, err := rule.ParseRules(data); err != nil {
			return ctx.JSON(http.StatusBadRequest, &meta.JSONResult{
				Code:  failed,
				Value: err.Error(),
			})
		}

		err = s.store.PutDefaultRules(data)
		if err != nil {
			return ctx.JSON(http.StatusOK, &meta.JSONResult{
				Code:  failed,
				Value: err.Error(),
			})
		}

		return ctx.JSON(http.StatusOK, &meta.JSONResult{})
	}
}

func (s *Server) segments() func(ctx echo.Context) error {
	return func(ctx echo.Context) error {
		datasource := ctx.QueryParam("datasource")

		var values []meta.Segment
		err := s.store.LoadUsedSegments(func(seg *meta.Segment) error {
			if datasource == "" || seg.Datasource == datasource {
				values = append(values, *seg)
			}
			return nil
		})
		if err != nil {
			return ctx.JSON(http.StatusOK, &meta.JSONResult{
				Code:  failed,
				Value: err.Error(),
			})
		}

		return ctx.JSON(http.StatusOK, &meta.JSONResult{
			Value: values,
		})
	}
}

func (s *Server) putSegment() func(ctx echo.Context) error {
	return func(ctx echo.Context) error {
		value := meta.Segment{}
		if err := util.ReadJSONFromBody(ctx.Request().Body, &value); err != nil {
			return ctx.NoContent(http.StatusBadRequest)
		}

		if err := value.Validate(); err != nil {
			return ctx.JSON(http.StatusBadRequest, &meta.JSONResult{
				Code:  failed,
				Value: err.Error(),
			})
		}

		if err := s.store.PutSegment(&value, true); err != nil {
			return ctx.JSON(http.StatusOK, &meta.JSONResult{
				Code:  failed,
				Value: err.Error(),
			})
		}

		return ctx.JSON(http.StatusOK, &meta.JSONResult{
			Value: value.ID(),
		})
	}
}

func (s *Server) markUnused() func(ctx echo.Context) error {
	return func(ctx echo.Context) error {
		// unused segments vanish from the next cycle's catalog snapshot and
		// get dropped everywhere by the rule engine
		err := s.store.MarkUnused(ctx.Param("id"))
		if err != nil {
			return ctx.JSON(http.StatusOK, &meta.JSONResult{
				Code:  failed,
				Value: err.Error(),
			})
		}

		return ctx.JSON(http.StatusOK, &meta.JSONResult{})
	}
}

func (s *Server) servers() func(ctx echo.Context) error {
	return func(ctx echo.Context) error {
		values, err := s.registry.CurrentServers()
		if err != nil {
			return ctx.JSON(http.StatusOK, &meta.JSONResult{
				Code:  failed,
				Value: err.Error(),
			})
		}

		return ctx.JSON(http.StatusOK, &meta.JSONResult{
			Value: values,
		})
	}
}

func (s *Server) stats() func(ctx echo.Context) error {
	return func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, &meta.JSONResult{
			Value: statsValue(s.runner.LastStats()),
		})
	}
}

// cycle trigger one reconciliation cycle now instead of waiting for the
// next tick, returns the cycle's stats
func (s *Server) cycle() func(ctx echo.Context) error {
	return func(ctx echo.Context) error {
		stats := s.runner.RunCycle(time.Now())
		return ctx.JSON(http.StatusOK, &meta.JSONResult{
			Value: statsValue(stats),
		})
	}
}

func (s *Server) health() func(ctx echo.Context) error {
	return func(ctx echo.Context) error {
		value := map[string]interface{}{
			"version": util.Version,
		}

		if stats, err := util.MemStats(); err == nil {
			value["memTotal"] = stats.Total
			value["memUsedPercent"] = stats.UsedPercent
		}

		return ctx.JSON(http.StatusOK, &meta.JSONResult{
			Value: value,
		})
	}
}

func statsValue(stats *cluster.Stats) map[string]map[string]int64 {
	values := make(map[string]map[string]int64)
	if stats == nil {
		return values
	}

	stats.Foreach(func(name, tier string, value int64) {
		m, ok := values[name]
		if !ok {
			m = make(map[string]int64)
			values[name] = m
		}
		m[tier] = value
	})
	return values
}
