package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/qflow/internal/common"
	"github.com/Veraticus/qflow/internal/model"
)

// LoadLocalCatalog reads the service catalog and branch directory from the
// catalog.services and catalog.branches keys. Order follows the config file.
//
//	catalog:
//	  services:
//	    - name: Botox
//	      subs: [ริ้วรอย, กราม]
//	  branches:
//	    - name: สยาม
//	      code: SIAM
func LoadLocalCatalog() (model.ServiceCatalog, model.BranchDirectory, error) {
	var services []model.Service
	if err := viper.UnmarshalKey("catalog.services", &services); err != nil {
		return nil, nil, fmt.Errorf("%w: catalog.services: %w", common.ErrInvalidConfig, err)
	}

	var branches []model.Branch
	if err := viper.UnmarshalKey("catalog.branches", &branches); err != nil {
		return nil, nil, fmt.Errorf("%w: catalog.branches: %w", common.ErrInvalidConfig, err)
	}

	var catalog model.ServiceCatalog
	for _, svc := range services {
		if svc.Name == "" {
			continue
		}
		catalog = catalog.Add(svc.Name, "")
		for _, sub := range svc.Subs {
			catalog = catalog.Add(svc.Name, sub)
		}
	}

	var directory model.BranchDirectory
	for _, b := range branches {
		if b.Name == "" || b.Code == "" {
			return nil, nil, fmt.Errorf("%w: branch entries need both name and code", common.ErrInvalidConfig)
		}
		directory = append(directory, b)
	}

	return catalog, directory, nil
}
