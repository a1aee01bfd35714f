package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/utxoscope/utxo_grapher/common"
	"github.com/utxoscope/utxo_grapher/config"
	"github.com/utxoscope/utxo_grapher/graph"
	"github.com/utxoscope/utxo_grapher/storage"
)

func (s *Server) health(c *gin.Context) {
	count, err := s.utxoStore.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	version, err := s.metaStore.DatasetVersion()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"utxo_count":      count,
		"dataset_version": version,
	})
}

// ingestUTXOs accepts a batch of raw UTXO records from the presentation
// layer. Records are normalized before storage; txid/address validation
// is advisory and only counted.
func (s *Server) ingestUTXOs(c *gin.Context) {
	var req struct {
		UTXOs []common.UTXO `json:"utxos"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.UTXOs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "utxos list is empty"})
		return
	}

	warnings := 0
	batch := make([]*common.UTXO, 0, len(req.UTXOs))
	for i := range req.UTXOs {
		u := common.Normalize(req.UTXOs[i])
		if err := common.ValidateTxID(u.TxID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if s.cfg.ValidateAddrs {
			if err := common.ValidateAddress(u.Address, config.GlobalNetwork); err != nil {
				warnings++
			}
		}
		batch = append(batch, &u)
	}

	if err := s.utxoStore.PutBatch(batch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	version, err := s.metaStore.BumpDatasetVersion()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"stored":          len(batch),
		"warnings":        warnings,
		"dataset_version": version,
	})
}

func (s *Server) getUTXOs(c *gin.Context) {
	utxos, err := s.filteredUTXOs(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"utxos": utxos,
		"count": len(utxos),
	})
}

func (s *Server) deleteUTXO(c *gin.Context) {
	txid := c.Param("txid")
	vout := c.Param("vout")
	if _, err := strconv.ParseUint(vout, 10, 32); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vout must be a non-negative integer"})
		return
	}
	if err := s.utxoStore.Delete(txid + ":" + vout); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	version, err := s.metaStore.BumpDatasetVersion()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dataset_version": version})
}

// getGraph builds (or serves from cache) the traceability graph for the
// current filter. With layout=1 a force-layout pass positions the nodes;
// the pass runs on a clone so the cached build stays position-free.
func (s *Server) getGraph(c *gin.Context) {
	criteria := parseCriteria(c)
	version, err := s.metaStore.DatasetVersion()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	g, ok := s.cache.GetGraph(version, &criteria)
	if !ok {
		utxos, err := s.utxoStore.All()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		g = graph.Build(graph.Filter(utxos, criteria))
		s.cache.PutGraph(version, &criteria, g)
	}

	if c.Query("layout") == "1" {
		iterations := s.cfg.Layout.Iterations
		if v := c.Query("iterations"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "iterations must be a positive integer"})
				return
			}
			iterations = n
		}
		seed := s.cfg.Layout.Seed
		if v := c.Query("seed"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be an integer"})
				return
			}
			seed = n
		}
		deadline := time.Now().Add(time.Duration(s.cfg.LayoutDeadlineMS) * time.Millisecond)
		positioned := g.Clone()
		graph.Layout(positioned, graph.LayoutOptions{
			Iterations:     iterations,
			Seed:           seed,
			ShouldContinue: func() bool { return time.Now().Before(deadline) },
		})
		g = positioned
	}

	c.JSON(http.StatusOK, gin.H{
		"nodes":           g.Nodes,
		"links":           g.Links,
		"dataset_version": version,
	})
}

func (s *Server) getTreemap(c *gin.Context) {
	mode := graph.GroupMode(c.DefaultQuery("mode", string(graph.GroupNone)))
	switch mode {
	case graph.GroupNone, graph.GroupRisk, graph.GroupWallet, graph.GroupTag:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be one of none, risk, wallet, tag"})
		return
	}
	criteria := parseCriteria(c)
	version, err := s.metaStore.DatasetVersion()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	groups, ok := s.cache.GetGroups(version, &criteria, mode)
	if !ok {
		utxos, err := s.utxoStore.All()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		groups = graph.BuildGroups(graph.Filter(utxos, criteria), mode)
		s.cache.PutGroups(version, &criteria, mode, groups)
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":            mode,
		"groups":          groups,
		"dataset_version": version,
	})
}

func (s *Server) getFilterOptions(c *gin.Context) {
	tags, err := s.utxoStore.DistinctTags()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	wallets, err := s.utxoStore.DistinctWallets()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tags":        tags,
		"wallets":     wallets,
		"risk_levels": []common.RiskLevel{common.RiskLow, common.RiskMedium, common.RiskHigh},
	})
}

func (s *Server) exportSnapshot(c *gin.Context) {
	filePath, err := s.utxoStore.ExportSnapshot(s.cfg.BackupDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "file": filePath})
}

func (s *Server) importSnapshot(c *gin.Context) {
	var req struct {
		File string `json:"file"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.File == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file parameter is required"})
		return
	}
	utxos, err := storage.LoadSnapshot(req.File)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.utxoStore.PutBatch(utxos); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	version, err := s.metaStore.BumpDatasetVersion()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"imported":        len(utxos),
		"dataset_version": version,
	})
}

// filteredUTXOs loads the full set and applies the request's criteria.
func (s *Server) filteredUTXOs(c *gin.Context) ([]*common.UTXO, error) {
	utxos, err := s.utxoStore.All()
	if err != nil {
		return nil, err
	}
	return graph.Filter(utxos, parseCriteria(c)), nil
}

// parseCriteria reads the shared filter query parameters. Set-valued
// parameters are comma separated.
func parseCriteria(c *gin.Context) graph.Criteria {
	criteria := graph.Criteria{
		SearchTerm: c.Query("search"),
		Tags:       splitParam(c.Query("tags")),
		Wallets:    splitParam(c.Query("wallets")),
	}
	for _, r := range splitParam(c.Query("risk")) {
		criteria.RiskLevels = append(criteria.RiskLevels, common.RiskLevel(strings.ToLower(r)))
	}
	if v := c.Query("min_amount"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			criteria.MinAmount = &f
		}
	}
	if v := c.Query("max_amount"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			criteria.MaxAmount = &f
		}
	}
	return criteria
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
