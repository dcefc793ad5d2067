package pipeline

import (
	"context"

	"subweave/internal/hotwords"
	"subweave/internal/logging"
	"subweave/internal/metadata"
)

// gatherWorkInfo assembles the lookup context and resolves work metadata.
// Every step degrades: a job without metadata still recognises and
// translates, it just runs without hotwords.
func (p *Pipeline) gatherWorkInfo(ctx context.Context, j *job) {
	info := metadata.InferFromPath(j.naming.VideoPath)

	if p.cfg.Metadata.NFOEnabled {
		nfo, err := metadata.FindNFO(j.naming.VideoPath, p.cfg.Metadata.NFOSameNameOnly)
		if err != nil {
			j.logger.Warn("nfo sidecar unreadable", logging.Error(err))
		} else if nfo != nil {
			info = metadata.ApplyNFO(info, nfo)
		}
	}
	if p.cfg.Metadata.UseLLMForWorkInfo && p.deps.WorkInfoModel != nil {
		info = metadata.RefineWithLLM(ctx, p.deps.WorkInfoModel, j.naming.VideoPath, info, j.logger)
	}
	j.info = info

	manual, err := metadata.LoadManual(j.naming.VideoPath, p.cfg.Paths.OutputDir, p.cfg.Metadata.ManualDir)
	if err != nil {
		j.logger.Warn("manual metadata unreadable", logging.Error(err))
	} else if manual != nil {
		j.meta = manual
		j.logger.Info("manual metadata override in effect",
			logging.String("title", manual.TitleOriginal))
		return
	}

	if !p.cfg.Metadata.Enabled || p.deps.Resolver == nil || info.Title == "" {
		return
	}
	query := metadata.WorkQuery{
		Title:     info.Title,
		Aliases:   p.aliases.Resolve(info.Title),
		Year:      info.Year,
		Season:    info.Season,
		Episode:   info.Episode,
		Type:      info.Type,
		Languages: p.cfg.Metadata.LanguagePriority,
	}
	meta, err := p.deps.Resolver.Resolve(ctx, query)
	if err != nil {
		j.logger.Warn("metadata resolution failed", logging.Error(err))
		return
	}
	if meta != nil {
		j.meta = meta
		j.logger.Info("work metadata resolved",
			logging.String("title", meta.TitleOriginal),
			logging.Float64("confidence", meta.Confidence))
	}
}

// buildHotwords collects vocabulary phrases from the glossary, resolved
// title aliases, and metadata characters.
func (p *Pipeline) buildHotwords(j *job, lang string) []hotwords.Entry {
	if !p.cfg.Hotwords.Enabled {
		return nil
	}
	var sources hotwords.Sources

	if p.cfg.Hotwords.UseGlossary {
		sources.GlossaryTerms = p.glossary
	}
	if p.cfg.Hotwords.UseTitleAliases && j.info.Title != "" {
		sources.TitleAliases = p.aliases.Resolve(j.info.Title)
		if j.meta != nil {
			sources.TitleAliases = append(sources.TitleAliases, j.meta.Aliases...)
			for _, localized := range j.meta.TitleLocalized {
				sources.TitleAliases = append(sources.TitleAliases, localized)
			}
		}
	}
	if p.cfg.Hotwords.UseMetadata && j.meta != nil {
		for _, character := range j.meta.Characters {
			sources.Characters = append(sources.Characters, character.Name)
			for _, alias := range character.Aliases {
				sources.Characters = append(sources.Characters, alias)
			}
		}
	}

	return hotwords.Build(sources, []string{lang}, p.cfg.Hotwords.Weight)
}

func hotwordGlossary(path string) ([]string, error) {
	return hotwords.LoadGlossary(path)
}
